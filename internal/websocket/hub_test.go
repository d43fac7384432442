package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"task-manager/internal/models"
	"task-manager/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeConn struct {
	mu        sync.Mutex
	messages  chan []byte
	failing   bool
	closed    bool
	deadlines int
	// block membuat WriteMessage menggantung sampai channel ditutup,
	// seperti klien yang berhenti membaca.
	block chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{messages: make(chan []byte, 64)}
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing || c.closed {
		return errors.New("connection broken")
	}
	c.messages <- data
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadlines++
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// connect mendaftarkan klien dan menjalankan WritePump seperti handler.
// Channel yang dikembalikan tertutup saat WritePump selesai.
func connect(hub *Hub, conn *fakeConn, identity *models.User) (*Client, <-chan struct{}) {
	client := NewClient(conn, identity)
	done := make(chan struct{})
	go func() {
		defer close(done)
		client.WritePump()
	}()
	hub.Register(client)
	return client, done
}

func waitClosed(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WritePump did not stop")
	}
}

func receive(t *testing.T, c *fakeConn) Event {
	t.Helper()
	select {
	case raw := <-c.messages:
		var ev Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNothing(t *testing.T, c *fakeConn) {
	t.Helper()
	select {
	case raw := <-c.messages:
		t.Fatalf("unexpected message %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func TestHubDeliversOnlyToReaders(t *testing.T) {
	hub := startHub(t)

	alice := &models.User{ID: 1, Role: models.RoleUser}
	bob := &models.User{ID: 2, Role: models.RoleUser}
	root := &models.User{ID: 3, Role: models.RoleAdmin}

	aliceConn, bobConn, rootConn := newFakeConn(), newFakeConn(), newFakeConn()
	connect(hub, aliceConn, alice)
	connect(hub, bobConn, bob)
	connect(hub, rootConn, root)

	hub.Publish("task.created", models.Task{ID: 10, Title: "Buy milk", OwnerID: alice.ID})

	ev := receive(t, aliceConn)
	assert.Equal(t, "task.created", ev.Type)
	assert.Equal(t, 10, ev.Task.ID)

	ev = receive(t, rootConn)
	assert.Equal(t, "Buy milk", ev.Task.Title)

	assertNothing(t, bobConn)
}

func TestWritePumpSetsDeadlineAndStopsOnError(t *testing.T) {
	hub := startHub(t)
	alice := &models.User{ID: 1, Role: models.RoleUser}

	broken := newFakeConn()
	broken.failing = true
	healthy := newFakeConn()
	_, brokenDone := connect(hub, broken, alice)
	connect(hub, healthy, alice)

	hub.Publish("task.updated", models.Task{ID: 1, OwnerID: alice.ID})
	receive(t, healthy)
	waitClosed(t, brokenDone)
	assert.True(t, broken.isClosed())

	healthy.mu.Lock()
	assert.Equal(t, 1, healthy.deadlines)
	healthy.mu.Unlock()

	hub.Publish("task.deleted", models.Task{ID: 1, OwnerID: alice.ID})
	assert.Equal(t, "task.deleted", receive(t, healthy).Type)
}

func TestStalledClientDoesNotBlockOthers(t *testing.T) {
	hub := startHub(t)
	alice := &models.User{ID: 1, Role: models.RoleUser}

	stalled := newFakeConn()
	stalled.block = make(chan struct{})
	healthy := newFakeConn()
	_, stalledDone := connect(hub, stalled, alice)
	connect(hub, healthy, alice)
	require.Eventually(t, func() bool { return hub.Connected() == 2 }, time.Second, 10*time.Millisecond)

	const events = sendBuffer * 3
	for i := 0; i < events; i++ {
		hub.Publish("task.updated", models.Task{ID: i, OwnerID: alice.ID})
		assert.Equal(t, i, receive(t, healthy).Task.ID)
	}

	// klien yang macet dilepas setelah antreannya penuh
	assert.Eventually(t, func() bool { return hub.Connected() == 1 }, time.Second, 10*time.Millisecond)

	close(stalled.block)
	waitClosed(t, stalledDone)
	assert.True(t, stalled.isClosed())
}

func TestHubNeverClosesConnections(t *testing.T) {
	hub := startHub(t)
	alice := &models.User{ID: 1, Role: models.RoleUser}

	for i := 0; i < 100; i++ {
		conn := newFakeConn()
		client := NewClient(conn, alice)
		hub.Register(client)
		hub.Unregister(client)
		// tanpa WritePump tidak ada yang menutup koneksi
		assert.False(t, conn.isClosed())

		select {
		case _, ok := <-client.send:
			assert.False(t, ok, "send channel must be closed after unregister")
		case <-time.After(2 * time.Second):
			t.Fatal("send channel not closed")
		}
	}
	assert.Zero(t, hub.Connected())
}

func TestHubUnregisterAndShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	alice := &models.User{ID: 1, Role: models.RoleUser}
	left, stays := newFakeConn(), newFakeConn()
	leftClient, leftDone := connect(hub, left, alice)
	_, staysDone := connect(hub, stays, alice)
	assert.Eventually(t, func() bool { return hub.Connected() == 2 }, time.Second, 10*time.Millisecond)

	hub.Unregister(leftClient)
	waitClosed(t, leftDone)
	assert.Eventually(t, func() bool { return hub.Connected() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	waitClosed(t, staysDone)
	assert.Zero(t, hub.Connected())

	// setelah berhenti, Register/Unregister tidak boleh menggantung
	late := newFakeConn()
	lateClient, lateDone := connect(hub, late, alice)
	hub.Unregister(lateClient)
	waitClosed(t, lateDone)
	assert.True(t, late.isClosed())
}

func TestPublishNeverBlocks(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := logger.SystemLogger
	logger.SystemLogger = zap.New(core)
	t.Cleanup(func() { logger.SystemLogger = prev })

	hub := NewHub() // Run tidak dijalankan

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			hub.Publish("task.created", models.Task{ID: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked")
	}

	dropped := logs.FilterMessage("Task event dropped, broadcast buffer full")
	assert.Equal(t, broadcastBuffer, dropped.Len())
	assert.Equal(t, zap.WarnLevel, dropped.All()[0].Level)
}
