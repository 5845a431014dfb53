package twitch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overlap/internal/providers"
	"overlap/internal/structures"
)

type clientTestLogger struct{}

func (m *clientTestLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *clientTestLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *clientTestLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *clientTestLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *clientTestLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *clientTestLogger) Close()                                                  {}

func newClientFor(helix, chatters string) *Client {
	conf := &structures.Config{
		Twitch: structures.TwitchConfig{
			ClientID:    "test-client",
			Token:       "test-token",
			HelixURL:    helix,
			ChattersURL: chatters,
			MinViewers:  1000,
		},
	}
	return NewClient(conf, &clientTestLogger{})
}

func streamEntry(id, login, name, game string, viewers int) map[string]interface{} {
	return map[string]interface{}{
		"user_id":      id,
		"user_login":   login,
		"user_name":    name,
		"game_name":    game,
		"viewer_count": viewers,
	}
}

func TestClient_Channels(t *testing.T) {
	var sawAuth, sawClientID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		sawClientID = r.Header.Get("Client-Id")

		switch r.URL.Path {
		case "/streams":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []interface{}{
					streamEntry("1", "alpha", "Alpha", "Chess", 5000),
					streamEntry("2", "beta", "Beta", "Poker", 1200),
					streamEntry("3", "tiny", "Tiny", "Art", 400),
				},
				"pagination": map[string]string{"cursor": "next"},
			})
		case "/users":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []interface{}{
					map[string]string{
						"login":             "alpha",
						"display_name":      "Alpha",
						"profile_image_url": "https://cdn.example/jtv_user_pictures/user-profile_image-abc123-300x300.png",
					},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newClientFor(srv.URL, srv.URL)
	channels, err := c.Channels(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", sawAuth)
	assert.Equal(t, "test-client", sawClientID)

	require.Len(t, channels, 2, "pagination stops at the viewer floor")
	assert.Equal(t, "alpha", channels[0].LoginName)
	assert.Equal(t, "Chess", channels[0].Game)
	assert.Equal(t, 5000, channels[0].Viewers)
	assert.Equal(t, "user-profile_image-abc123-70x70.png", channels[0].Avatar)
	assert.Equal(t, "beta", channels[1].LoginName)
	assert.Empty(t, channels[1].Avatar)
}

func TestClient_ChannelsPagination(t *testing.T) {
	pages := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/streams" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})
			return
		}
		pages++
		cursor := "page2"
		data := []interface{}{streamEntry("1", "alpha", "Alpha", "Chess", 5000)}
		if r.URL.Query().Get("after") == "page2" {
			cursor = ""
			data = []interface{}{streamEntry("2", "beta", "Beta", "Poker", 2000)}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data":       data,
			"pagination": map[string]string{"cursor": cursor},
		})
	}))
	defer srv.Close()

	c := newClientFor(srv.URL, srv.URL)
	channels, err := c.Channels(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, pages)
	require.Len(t, channels, 2)
}

func TestClient_ChannelsDeduplicates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/streams" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []interface{}{
				streamEntry("1", "alpha", "Alpha", "Chess", 5000),
				streamEntry("1", "alpha", "Alpha", "Chess", 5000),
			},
			"pagination": map[string]string{"cursor": ""},
		})
	}))
	defer srv.Close()

	c := newClientFor(srv.URL, srv.URL)
	channels, err := c.Channels(context.Background())
	require.NoError(t, err)
	assert.Len(t, channels, 1)
}

func TestClient_ChannelsResolvesNonASCIILogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/streams":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []interface{}{
					streamEntry("42", "배틀로얄", "BattleRoyale", "Shooter", 3000),
				},
				"pagination": map[string]string{"cursor": ""},
			})
		case "/users":
			if id := r.URL.Query().Get("id"); id == "42" {
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"data": []interface{}{map[string]string{"login": "BattleRoyaleKR"}},
				})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})
		}
	}))
	defer srv.Close()

	c := newClientFor(srv.URL, srv.URL)
	channels, err := c.Channels(context.Background())
	require.NoError(t, err)

	require.Len(t, channels, 1)
	assert.Equal(t, "battleroyalekr", channels[0].LoginName)
}

func TestClient_ChannelsHelixError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newClientFor(srv.URL, srv.URL)
	_, err := c.Channels(context.Background())
	assert.Error(t, err)
}

func TestClient_GetChatters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alpha/chatters", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"chatter_count": 3,
			"chatters": map[string][]string{
				"moderators": {"mod1"},
				"viewers":    {"viewer1", "viewer2"},
			},
		})
	}))
	defer srv.Close()

	c := newClientFor(srv.URL, srv.URL)
	roster, err := c.GetChatters(context.Background(), "alpha")
	require.NoError(t, err)

	assert.Equal(t, 3, roster.ChatterCount)
	assert.ElementsMatch(t, []string{"mod1", "viewer1", "viewer2"}, roster.Chatters)
}

func TestClient_GetChattersError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newClientFor(srv.URL, srv.URL)
	_, err := c.GetChatters(context.Background(), "alpha")
	assert.Error(t, err)
}

func TestAvatarFragment(t *testing.T) {
	url := "https://static-cdn.example.net/jtv_user_pictures/user-profile_image-deadbeef-300x300.png"
	assert.Equal(t, "user-profile_image-deadbeef-70x70.png", avatarFragment(url))
	assert.Empty(t, avatarFragment("short"))
}

func TestClient_ChannelsLargeAvatarBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/streams":
			data := make([]interface{}, 0, 150)
			for i := 0; i < 150; i++ {
				data = append(data, streamEntry(
					fmt.Sprintf("%d", i), fmt.Sprintf("chan%03d", i), "Chan", "Chess", 5000-i))
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"data":       data,
				"pagination": map[string]string{"cursor": ""},
			})
		case "/users":
			assert.LessOrEqual(t, len(r.URL.Query()["login"]), 100)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})
		}
	}))
	defer srv.Close()

	c := newClientFor(srv.URL, srv.URL)
	channels, err := c.Channels(context.Background())
	require.NoError(t, err)
	assert.Len(t, channels, 150)
}
