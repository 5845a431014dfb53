// Package twitch implements channel discovery over the Helix API and the
// per-channel chat roster endpoint.
package twitch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"overlap/internal/models"
	"overlap/internal/providers"
	"overlap/internal/structures"
)

var loginPattern = regexp.MustCompile(`^[a-zA-Z0-9_]*$`)

// Client talks to the streaming platform. It implements
// services.ChannelSource and services.RosterClient.
type Client struct {
	http   *http.Client
	conf   *structures.Config
	logger providers.Logger
}

func NewClient(conf *structures.Config, logger providers.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: 30 * time.Second},
		conf:   conf,
		logger: logger,
	}
}

type streamsResponse struct {
	Data []struct {
		UserID      string `json:"user_id"`
		UserLogin   string `json:"user_login"`
		UserName    string `json:"user_name"`
		GameName    string `json:"game_name"`
		ViewerCount int    `json:"viewer_count"`
	} `json:"data"`
	Pagination struct {
		Cursor string `json:"cursor"`
	} `json:"pagination"`
}

type usersResponse struct {
	Data []struct {
		Login           string `json:"login"`
		DisplayName     string `json:"display_name"`
		ProfileImageURL string `json:"profile_image_url"`
	} `json:"data"`
}

type chattersResponse struct {
	ChatterCount int                 `json:"chatter_count"`
	Chatters     map[string][]string `json:"chatters"`
}

// Channels pages through live streams down to the configured viewer floor
// and backfills display metadata and avatars.
func (c *Client) Channels(ctx context.Context) ([]*models.Channel, error) {
	now := time.Now().UTC()
	channels := make([]*models.Channel, 0, 1024)
	seen := make(map[string]struct{})

	cursor := ""
	for {
		reqURL := c.conf.Twitch.HelixURL + "/streams?first=100"
		if cursor != "" {
			reqURL += "&after=" + url.QueryEscape(cursor)
		}

		var page streamsResponse
		if err := c.helixGet(ctx, reqURL, &page); err != nil {
			return nil, fmt.Errorf("fetch streams: %w", err)
		}
		cursor = page.Pagination.Cursor

		for _, stream := range page.Data {
			if stream.ViewerCount < c.conf.Twitch.MinViewers {
				cursor = ""
				break
			}

			login := strings.ToLower(stream.UserLogin)
			if !loginPattern.MatchString(login) {
				// Localized display logins; resolve the canonical login.
				resolved, err := c.resolveLogin(ctx, stream.UserID)
				if err != nil {
					c.logger.Warnf(providers.TypeRoster, "Could not resolve login for user %s: %s", stream.UserID, err)
					continue
				}
				login = resolved
			}
			if _, ok := seen[login]; ok {
				continue
			}
			seen[login] = struct{}{}

			channels = append(channels, &models.Channel{
				LoginName:   login,
				DisplayName: stream.UserName,
				Game:        stream.GameName,
				Viewers:     stream.ViewerCount,
				LastUpdate:  now,
			})
		}

		if cursor == "" {
			break
		}
	}

	c.fillAvatars(ctx, channels)
	return channels, nil
}

// GetChatters fetches one channel's roster and flattens the viewer-type
// groups into a single name list.
func (c *Client) GetChatters(ctx context.Context, login string) (*models.Roster, error) {
	reqURL := fmt.Sprintf("%s/%s/chatters", c.conf.Twitch.ChattersURL, url.PathEscape(login))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chatters endpoint returned %d", resp.StatusCode)
	}

	var body chattersResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	roster := &models.Roster{ChatterCount: body.ChatterCount}
	for _, names := range body.Chatters {
		roster.Chatters = append(roster.Chatters, names...)
	}
	return roster, nil
}

func (c *Client) resolveLogin(ctx context.Context, userID string) (string, error) {
	var body usersResponse
	if err := c.helixGet(ctx, c.conf.Twitch.HelixURL+"/users?id="+url.QueryEscape(userID), &body); err != nil {
		return "", err
	}
	if len(body.Data) == 0 {
		return "", fmt.Errorf("user %s not found", userID)
	}
	return strings.ToLower(body.Data[0].Login), nil
}

// fillAvatars batches /users lookups (100 logins per request) and stores
// the small-variant avatar fragment on each channel. Failures only cost
// display metadata, so they are logged and skipped.
func (c *Client) fillAvatars(ctx context.Context, channels []*models.Channel) {
	byLogin := make(map[string]*models.Channel, len(channels))
	for _, ch := range channels {
		byLogin[ch.LoginName] = ch
	}

	for start := 0; start < len(channels); start += 100 {
		end := min(start+100, len(channels))

		params := make([]string, 0, end-start)
		for _, ch := range channels[start:end] {
			params = append(params, "login="+url.QueryEscape(ch.LoginName))
		}

		var body usersResponse
		if err := c.helixGet(ctx, c.conf.Twitch.HelixURL+"/users?"+strings.Join(params, "&"), &body); err != nil {
			c.logger.Warnf(providers.TypeRoster, "Avatar lookup failed: %s", err)
			continue
		}

		for _, user := range body.Data {
			ch, ok := byLogin[strings.ToLower(user.Login)]
			if !ok {
				continue
			}
			ch.Avatar = avatarFragment(user.ProfileImageURL)
		}
	}
}

// avatarFragment reduces a profile image URL to its stable file fragment at
// the 70x70 variant.
func avatarFragment(profileURL string) string {
	small := strings.Replace(profileURL, "-300x300", "-70x70", 1)
	parts := strings.Split(small, "/")
	if len(parts) < 5 {
		return ""
	}
	return parts[4]
}

func (c *Client) helixGet(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.conf.Twitch.Token)
	req.Header.Set("Client-Id", c.conf.Twitch.ClientID)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("helix returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
