package redfish

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetConsoleInfo(t *testing.T) {
	var (
		sessionUser string
		tokenOnGet  string
		deleted     bool
	)
	ts := mockBMC(t, map[string]http.HandlerFunc{
		sessionCollection: func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &body)
			sessionUser = body["UserName"]
			w.Header().Set("X-Auth-Token", "tok123")
			w.Header().Set("Location", "/redfish/v1/SessionService/Sessions/7")
			w.WriteHeader(http.StatusCreated)
		},
		"/redfish/v1/SessionService/Sessions/7": func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodDelete {
				deleted = true
			}
			w.WriteHeader(http.StatusOK)
		},
		managerPath: func(w http.ResponseWriter, r *http.Request) {
			tokenOnGet = r.Header.Get("X-Auth-Token")
			io.WriteString(w, `{
				"SerialConsole":{"ServiceEnabled":true,"MaxConcurrentSessions":1,"ConnectTypesSupported":["SSH","IPMI"]},
				"GraphicalConsole":{"ServiceEnabled":true,"MaxConcurrentSessions":4,"ConnectTypesSupported":["KVMIP"]}}`)
		},
	})

	c := newTestClient(ts)
	info, err := c.GetConsoleInfo(context.Background())
	if err != nil {
		t.Fatalf("GetConsoleInfo: %v", err)
	}

	if sessionUser != "root" {
		t.Errorf("session user = %q, want root", sessionUser)
	}
	if tokenOnGet != "tok123" {
		t.Errorf("manager fetch used token %q, want tok123", tokenOnGet)
	}
	if !deleted {
		t.Error("session was not closed")
	}
	if !info.SerialEnabled || !info.GraphicalEnabled {
		t.Errorf("info = %+v, want both consoles enabled", info)
	}
	if info.MaxSessions != 4 {
		t.Errorf("max sessions = %d, want 4", info.MaxSessions)
	}
	if len(info.SerialTypes) != 2 || info.SerialTypes[0] != "SSH" {
		t.Errorf("serial types = %v", info.SerialTypes)
	}
}

func TestGetConsoleInfo_AbsoluteSessionLocation(t *testing.T) {
	var deleted bool
	var ts *httptest.Server
	ts = mockBMC(t, map[string]http.HandlerFunc{
		sessionCollection: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Auth-Token", "tok456")
			w.Header().Set("Location", ts.URL+"/redfish/v1/SessionService/Sessions/9")
			w.WriteHeader(http.StatusCreated)
		},
		"/redfish/v1/SessionService/Sessions/9": func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodDelete {
				deleted = true
			}
			w.WriteHeader(http.StatusOK)
		},
		managerPath: func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"SerialConsole":{"ServiceEnabled":true}}`)
		},
	})

	c := newTestClient(ts)
	if _, err := c.GetConsoleInfo(context.Background()); err != nil {
		t.Fatalf("GetConsoleInfo: %v", err)
	}
	if !deleted {
		t.Error("session with absolute Location was not closed")
	}
}

func TestGetConsoleInfo_NoToken(t *testing.T) {
	ts := mockBMC(t, map[string]http.HandlerFunc{
		sessionCollection: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		},
	})

	c := newTestClient(ts)
	if _, err := c.GetConsoleInfo(context.Background()); err == nil {
		t.Fatal("expected error when session response has no token")
	}
}
