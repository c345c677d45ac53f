package realtime

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/Kaptaan1992/honeybees-daycare/shared"
	"github.com/Kaptaan1992/honeybees-daycare/store"

	"github.com/gorilla/websocket"
	"github.com/robfig/cron/v3"
)

const (
	channelTopic   = "realtime:public"
	heartbeatTopic = "phoenix"

	eventJoin      = "phx_join"
	eventHeartbeat = "heartbeat"
	eventInsert    = "INSERT"
	eventUpdate    = "UPDATE"
	eventDelete    = "DELETE"
)

type socketMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

type changePayload struct {
	Table  string          `json:"table"`
	Type   string          `json:"type"`
	Record json.RawMessage `json:"record"`
}

// Conn is the subset of *websocket.Conn the channel needs; tests substitute
// their own.
type Conn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	Close() error
}

// Channel is the app-session subscription to the mirror's change stream: one
// shared topic over the whole dataset, filtered by table name on receipt.
// Incoming rows merge into local storage and fan out on the Bus.
type Channel struct {
	Store  *store.Store   `inject:""`
	Logger *shared.Logger `inject:""`
	Bus    *Bus           `inject:""`

	// Dial opens the websocket. Left nil it defaults to gorilla; tests
	// inject their own.
	Dial func(url string) (Conn, error)

	HeartbeatInterval time.Duration

	mutex     sync.Mutex
	conn      Conn
	connected bool
	ref       int
}

func dialWebsocket(url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	return conn, err
}

func (c *Channel) IsConnected() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.connected
}

// EnsureConnected subscribes to the change stream when cloud sync is enabled
// and the channel is not already live. Safe to call repeatedly: an existing
// subscription is left alone, so the watchdog never accumulates duplicates.
func (c *Channel) EnsureConnected(ctx context.Context) {
	c.mutex.Lock()
	if c.connected {
		c.mutex.Unlock()
		return
	}
	c.mutex.Unlock()

	mirror := c.Store.Cloud()
	if mirror == nil {
		return
	}

	dial := c.Dial
	if dial == nil {
		dial = dialWebsocket
	}
	conn, err := dial(mirror.RealtimeUrl())
	if err != nil {
		c.Logger.Warn(ctx, "realtime channel connect failed", "err", err.Error())
		return
	}

	c.mutex.Lock()
	if c.connected {
		// lost the race against another caller
		c.mutex.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.connected = true
	c.ref = 0
	join := socketMessage{Topic: channelTopic, Event: eventJoin, Payload: json.RawMessage(`{}`), Ref: c.nextRefLocked()}
	c.mutex.Unlock()

	if err := conn.WriteJSON(join); err != nil {
		c.Logger.Warn(ctx, "realtime channel join failed", "err", err.Error())
		c.disconnect()
		return
	}

	c.Logger.Info(ctx, "realtime channel subscribed", "topic", channelTopic)
	go c.readLoop(ctx, conn)
	go c.heartbeatLoop(conn)
}

// Rearm drops any live subscription and reconnects, so the channel follows
// whatever mirror the store currently points at. Used after the cloud
// connection settings change.
func (c *Channel) Rearm(ctx context.Context) {
	c.disconnect()
	c.EnsureConnected(ctx)
}

// Watch arms the reconnect watchdog: a periodic check that re-initiates the
// subscription whenever cloud is enabled but the channel reports
// not-connected. Disconnects are retried silently.
func (c *Channel) Watch(ctx context.Context, spec string) (*cron.Cron, error) {
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(spec, func() {
		c.EnsureConnected(ctx)
	}); err != nil {
		return nil, err
	}
	scheduler.Start()
	return scheduler, nil
}

func (c *Channel) Close() {
	c.disconnect()
}

func (c *Channel) disconnect() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
}

// dropConn tears down only if conn is still the live connection, so a loop
// serving a replaced connection cannot kill its successor.
func (c *Channel) dropConn(conn Conn) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.conn != conn {
		return
	}
	conn.Close()
	c.conn = nil
	c.connected = false
}

func (c *Channel) nextRefLocked() string {
	c.ref++
	return strconv.Itoa(c.ref)
}

func (c *Channel) readLoop(ctx context.Context, conn Conn) {
	for {
		msg := socketMessage{}
		if err := conn.ReadJSON(&msg); err != nil {
			c.Logger.Warn(ctx, "realtime channel read failed, will reconnect", "err", err.Error())
			c.dropConn(conn)
			return
		}
		switch msg.Event {
		case eventInsert, eventUpdate, eventDelete:
			c.handleChange(ctx, msg)
		}
	}
}

func (c *Channel) heartbeatLoop(conn Conn) {
	interval := c.HeartbeatInterval
	if interval == 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		c.mutex.Lock()
		if !c.connected || c.conn != conn {
			c.mutex.Unlock()
			return
		}
		beat := socketMessage{Topic: heartbeatTopic, Event: eventHeartbeat, Payload: json.RawMessage(`{}`), Ref: c.nextRefLocked()}
		c.mutex.Unlock()

		if err := conn.WriteJSON(beat); err != nil {
			c.dropConn(conn)
			return
		}
	}
}

func (c *Channel) handleChange(ctx context.Context, msg socketMessage) {
	payload := changePayload{}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.Logger.Warn(ctx, "undecodable realtime payload", "err", err.Error())
		return
	}

	switch payload.Table {
	case store.TableSettings:
		if _, ok := c.Store.SyncSettingsFromCloud(ctx); ok {
			c.Bus.Publish(Event{Type: EventSettingsChanged, Table: payload.Table})
		}
	case store.TableDailyLogs:
		if msg.Event == eventDelete || len(payload.Record) == 0 {
			c.Bus.Publish(Event{Type: EventDataChanged, Table: payload.Table})
			return
		}
		log := store.DailyLog{}
		if err := json.Unmarshal(payload.Record, &log); err != nil {
			c.Logger.Warn(ctx, "undecodable daily log change", "err", err.Error())
			return
		}
		merged := c.Store.MergeRemoteDailyLog(log)
		c.Bus.Publish(Event{Type: EventDailyLogChanged, Table: payload.Table, DailyLog: &merged})
	default:
		c.Bus.Publish(Event{Type: EventDataChanged, Table: payload.Table})
	}
}
