package handlers

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"team-pairing-system/services"
)

func TestFightStreamSurvivesTicks(t *testing.T) {
	prev := services.StreamInterval
	services.StreamInterval = 20 * time.Millisecond
	t.Cleanup(func() { services.StreamInterval = prev })

	env := newTestEnv(t)
	id := env.createGame(t, "Rivals", "Orks")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go env.app.Listener(ln)
	t.Cleanup(func() { env.app.ShutdownWithTimeout(time.Second) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		"http://"+ln.Addr().String()+gamePath(id, "/fight/stream")+"?token="+testToken, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	sawBoard, sawData, ticked := false, false, false
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "event: board":
			sawBoard = true
		case sawBoard && strings.HasPrefix(line, "data: {"):
			sawData = true
		case sawData && line == ":":
			// a keepalive after the first board means the writer lived through a tick
			ticked = true
		}
		if ticked {
			break
		}
	}
	if !sawBoard || !sawData || !ticked {
		t.Fatalf("board=%v data=%v ticked=%v err=%v", sawBoard, sawData, ticked, sc.Err())
	}
}
