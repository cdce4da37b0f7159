//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("JORNADA_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

func adminPassword() string {
	if v := os.Getenv("JORNADA_TEST_ADMIN_PASSWORD"); v != "" {
		return v
	}
	return "admin123"
}

func TestPlayerJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()
	player := fmt.Sprintf("integration-%d", time.Now().UnixNano())

	var session struct {
		ID string `json:"id"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/sessions", "", map[string]string{"player_name": player, "mode": "profile"}, &session)
	if session.ID == "" {
		t.Fatalf("start did not return a session id")
	}

	for i := 0; ; i++ {
		if i > 200 {
			t.Fatalf("session never finished")
		}
		var roll struct {
			Question *struct {
				Options []struct {
					ID string `json:"id"`
				} `json:"options"`
			} `json:"question"`
			Finishing bool `json:"finishing"`
		}
		doJSON(t, client, http.MethodPost, base+"/api/sessions/"+session.ID+"/roll", "", nil, &roll)
		if roll.Question != nil {
			doJSON(t, client, http.MethodPost, base+"/api/sessions/"+session.ID+"/answer", "", map[string]string{"option_id": roll.Question.Options[0].ID}, nil)
		}
		if roll.Finishing {
			break
		}
	}

	// the finish step runs after a short delay
	var result struct {
		Report *struct {
			ID string `json:"id"`
		} `json:"report"`
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := client.Get(base + "/api/sessions/" + session.ID + "/result")
		if err != nil {
			t.Fatalf("get result: %v", err)
		}
		if resp.StatusCode == http.StatusOK {
			err = json.NewDecoder(resp.Body).Decode(&result)
			resp.Body.Close()
			if err != nil {
				t.Fatalf("decode result: %v", err)
			}
			break
		}
		resp.Body.Close()
		if time.Now().After(deadline) {
			t.Fatalf("result not ready, last status %d", resp.StatusCode)
		}
		time.Sleep(200 * time.Millisecond)
	}
	if result.Report == nil || result.Report.ID == "" {
		t.Fatalf("expected a saved report in the result")
	}

	var login struct {
		Token string `json:"token"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/admin/login", "", map[string]string{"password": adminPassword()}, &login)
	if login.Token == "" {
		t.Fatalf("login did not return token")
	}

	var reports []struct {
		ID         string `json:"id"`
		PlayerName string `json:"playerName"`
	}
	doJSON(t, client, http.MethodGet, base+"/api/admin/reports", login.Token, nil, &reports)
	found := false
	for _, r := range reports {
		if r.ID == result.Report.ID && r.PlayerName == player {
			found = true
		}
	}
	if !found {
		t.Fatalf("report %s not listed for admin", result.Report.ID)
	}

	req, _ := http.NewRequest(http.MethodGet, base+"/api/admin/reports/"+result.Report.ID+"/export?format=csv", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	csv, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !bytes.HasPrefix(csv, []byte("\ufeff")) {
		t.Fatalf("unexpected csv export: status %d", resp.StatusCode)
	}

	doJSON(t, client, http.MethodDelete, base+"/api/admin/reports/"+result.Report.ID, login.Token, nil, nil)
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, out any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http %s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
