package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/Strum355/log"
	"github.com/gorilla/websocket"

	"Harmony/channel"
	"Harmony/utils"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Admission is decided by the upstream auth collaborator, not by origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const outboundBufferSize = 64

type frame struct {
	messageType int
	data        []byte
}

// wsClient adapts a websocket connection to the channel.Sender contract.
// Writes are drained by a dedicated goroutine so a slow device never blocks
// its user's coordinator.
type wsClient struct {
	conn *websocket.Conn
	out  chan frame
	done chan struct{}
	once sync.Once
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		conn: conn,
		out:  make(chan frame, outboundBufferSize),
		done: make(chan struct{}),
	}
}

// Send marshals and queues one outbound message. A full buffer or a closed
// connection yields an error; the coordinator logs it and moves on.
func (c *wsClient) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.enqueue(frame{messageType: websocket.TextMessage, data: data})
}

func (c *wsClient) sendText(s string) error {
	return c.enqueue(frame{messageType: websocket.TextMessage, data: []byte(s)})
}

func (c *wsClient) enqueue(f frame) error {
	select {
	case <-c.done:
		return errors.New("connection closed")
	default:
	}
	select {
	case c.out <- f:
		return nil
	default:
		return errors.New("outbound buffer full")
	}
}

func (c *wsClient) writePump() {
	for {
		select {
		case <-c.done:
			return
		case f := <-c.out:
			if err := c.conn.WriteMessage(f.messageType, f.data); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// pongFor answers a raw ping frame. Returns false for anything that is not
// a ping.
func pongFor(data []byte, nowMs int64) (string, bool) {
	token, ok := bytes.CutPrefix(data, []byte("ping:"))
	if !ok {
		return "", false
	}
	return "pong:" + string(token) + ":" + strconv.FormatInt(nowMs, 10), true
}

// ServeWS admits pre-validated device connections onto their user channel.
// Query parameters carry the admission descriptor; real authentication
// happens upstream of this handler.
func ServeWS(registry *channel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		desc := channel.Descriptor{
			UserID:        q.Get("user"),
			DeviceID:      q.Get("deviceId"),
			HostRequested: q.Get("host") == "true",
			Info: channel.DeviceInfo{
				Type:     q.Get("deviceType"),
				Platform: q.Get("platform"),
				Client:   q.Get("client"),
				Name:     q.Get("name"),
			},
		}
		if desc.UserID == "" || desc.DeviceID == "" {
			http.Error(w, "missing user or deviceId", http.StatusBadRequest)
			return
		}

		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.WithError(err).Error("websocket upgrade failed")
			return
		}
		client := newWSClient(conn)
		go client.writePump()

		handle, err := registry.Connect(desc, client)
		if err != nil {
			log.WithError(err).Error("connection rejected")
			client.close()
			return
		}

		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			// Raw ping frames are answered inline and never reach the
			// coordinator.
			if messageType == websocket.TextMessage {
				if pong, ok := pongFor(data, utils.NowMillis()); ok {
					if err := client.sendText(pong); err != nil {
						log.WithFields(log.Fields{
							"session": handle.SessionID(),
							"error":   err.Error(),
						}).Error("failed to answer ping")
					}
					continue
				}
			}
			handle.Deliver(data)
		}

		handle.Close()
		client.close()
		log.WithFields(log.Fields{
			"user":    desc.UserID,
			"session": handle.SessionID(),
		}).Info("session disconnected")
	}
}
