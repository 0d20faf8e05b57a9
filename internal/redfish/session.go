package redfish

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
)

const sessionCollection = serviceRoot + "/SessionService/Sessions"

// session is a short-lived Redfish session, used only by interactive
// operations that require token auth. It is scoped to one operation and torn
// down on every exit path; nothing about it survives the call.
type session struct {
	token    string
	location string
}

// openSession creates a session and returns its token and resource location.
func (c *Client) openSession(ctx context.Context) (*session, error) {
	body := map[string]string{
		"UserName": c.username,
		"Password": c.password,
	}
	resp, err := c.Post(ctx, sessionCollection, body)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}

	token := resp.Header.Get("X-Auth-Token")
	if token == "" {
		return nil, fmt.Errorf("session response carried no X-Auth-Token")
	}

	// Some firmware returns an absolute Location; only the path is usable
	// as a request target.
	location := resp.Header.Get("Location")
	if u, err := url.Parse(location); err == nil && u.Host != "" {
		location = u.Path
	}
	return &session{token: token, location: location}, nil
}

// closeSession tears the session down. Best effort: a session the BMC has
// already expired is fine.
func (c *Client) closeSession(ctx context.Context, s *session) {
	if s == nil || s.location == "" {
		return
	}
	if _, err := c.request(ctx, http.MethodDelete, s.location, nil, false, s.token); err != nil {
		log.Debug().Str("host", c.host).Err(err).Msg("closing session")
	}
}

// ConsoleInfo describes the console services a manager exposes.
type ConsoleInfo struct {
	SerialEnabled    bool     `json:"serialEnabled"`
	SerialTypes      []string `json:"serialTypes,omitempty"`
	GraphicalEnabled bool     `json:"graphicalEnabled"`
	GraphicalTypes   []string `json:"graphicalTypes,omitempty"`
	MaxSessions      int      `json:"maxSessions"`
}

// GetConsoleInfo fetches the manager's console capabilities under a
// session token. Single-node, interactive-path only; the session is closed
// on every return path.
func (c *Client) GetConsoleInfo(ctx context.Context) (*ConsoleInfo, error) {
	s, err := c.openSession(ctx)
	if err != nil {
		return nil, err
	}
	defer c.closeSession(ctx, s)

	resp, err := c.request(ctx, http.MethodGet, managerPath, nil, false, s.token)
	if err != nil {
		return nil, fmt.Errorf("getting manager console info: %w", err)
	}

	var mgr struct {
		SerialConsole struct {
			ServiceEnabled        bool     `json:"ServiceEnabled"`
			MaxConcurrentSessions int      `json:"MaxConcurrentSessions"`
			ConnectTypesSupported []string `json:"ConnectTypesSupported"`
		} `json:"SerialConsole"`
		GraphicalConsole struct {
			ServiceEnabled        bool     `json:"ServiceEnabled"`
			MaxConcurrentSessions int      `json:"MaxConcurrentSessions"`
			ConnectTypesSupported []string `json:"ConnectTypesSupported"`
		} `json:"GraphicalConsole"`
	}
	if err := resp.Decode(&mgr); err != nil {
		return nil, fmt.Errorf("parsing manager console info: %w", err)
	}

	max := mgr.SerialConsole.MaxConcurrentSessions
	if mgr.GraphicalConsole.MaxConcurrentSessions > max {
		max = mgr.GraphicalConsole.MaxConcurrentSessions
	}
	return &ConsoleInfo{
		SerialEnabled:    mgr.SerialConsole.ServiceEnabled,
		SerialTypes:      mgr.SerialConsole.ConnectTypesSupported,
		GraphicalEnabled: mgr.GraphicalConsole.ServiceEnabled,
		GraphicalTypes:   mgr.GraphicalConsole.ConnectTypesSupported,
		MaxSessions:      max,
	}, nil
}
