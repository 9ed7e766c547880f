package handler

import (
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/event"
	"AmineForum/internal/service"
	"context"
	log "log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsBuffer     = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WsHandler 推送帖子统计变化
type WsHandler struct {
	bus *event.Bus
}

func NewWsHandler(bus *event.Bus) *WsHandler {
	return &WsHandler{bus: bus}
}

// StatsStream ?post_id=a,b 只订阅指定帖子，缺省订阅全部
func (s *WsHandler) StatsStream(c *gin.Context) {
	filter := make(map[string]struct{})
	for _, id := range strings.Split(c.Query("post_id"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			filter[id] = struct{}{}
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	// 事件总线同步分发，慢连接直接丢弃，不能拖住发布方
	events := make(chan *service.StatsEvent, wsBuffer)
	subID := s.bus.Subscribe(consts.TopicPostStats, func(_ context.Context, evt event.Event) {
		payload, ok := evt.Payload.(*service.StatsEvent)
		if !ok {
			return
		}
		if _, hit := filter[payload.PostID]; len(filter) > 0 && !hit {
			return
		}
		select {
		case events <- payload:
		default:
		}
	})
	defer s.bus.Unsubscribe(subID)

	log.InfoContext(c.Request.Context(), "统计 WS 连接已建立", "posts", len(filter))

	stopChan := make(chan struct{})

	// 读循环：只处理 pong 与断开
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(stopChan)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(payload); err != nil {
				log.Warn("WS 推送失败", "err", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-stopChan:
			log.Info("统计 WS 连接已断开")
			return
		}
	}
}
