package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edulab-backend-go/internal/models"
)

func TestMetricsHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewMetricsHub()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			hub.Broadcast(models.ServerMetricSample{ID: "drop-me"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked with no consumer draining the hub")
	}
}

func TestMetricsHubDeliversSampleToSubscriber(t *testing.T) {
	hub := NewMetricsHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	subscribed := make(chan struct{})
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Add(conn)
		close(subscribed)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	<-subscribed

	sent := models.ServerMetricSample{
		ID:                "sample-1",
		CapturedAt:        time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		ProcessRSSBytes:   64 << 20,
		SystemMemoryTotal: 8 << 30,
		SystemMemoryUsed:  4 << 30,
		DiskTotalBytes:    100 << 30,
		DiskUsedBytes:     40 << 30,
		ProcessCpuLoad:    0.05,
		SystemCpuLoad:     0.25,
	}
	hub.Broadcast(sent)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got models.ServerMetricSample
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, sent.ID, got.ID)
	assert.True(t, sent.CapturedAt.Equal(got.CapturedAt))
	assert.Equal(t, sent.ProcessRSSBytes, got.ProcessRSSBytes)
	assert.Equal(t, sent.SystemMemoryUsed, got.SystemMemoryUsed)
	assert.Equal(t, sent.DiskUsedBytes, got.DiskUsedBytes)
	assert.Equal(t, sent.SystemCpuLoad, got.SystemCpuLoad)
}

func TestMetricsHubRemoveStopsDelivery(t *testing.T) {
	hub := NewMetricsHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	subscribed := make(chan struct{})
	var serverConn *websocket.Conn
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConn = conn
		hub.Add(conn)
		close(subscribed)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	<-subscribed

	hub.Remove(serverConn)
	hub.Broadcast(models.ServerMetricSample{ID: "after-remove"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var got models.ServerMetricSample
	assert.Error(t, conn.ReadJSON(&got))
}
