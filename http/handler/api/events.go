package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/ob1/scannerd/encoding/json"
	"github.com/ob1/scannerd/event"
	"github.com/ob1/scannerd/http/api"
	"github.com/ob1/scannerd/http/handler/util"
	"github.com/ob1/scannerd/log"
	"github.com/ob1/scannerd/session"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// The EventsHandler type provides handler functions for retrieving events.
type EventsHandler struct {
	logs     log.ChannelWriter
	slots    event.EventSource
	upgrader websocket.Upgrader
	ping     time.Duration
}

// NewEvents returns a new EventsHandler type. Logs is the source for log
// events, slots the source for slot events.
func NewEvents(logs log.ChannelWriter, slots event.EventSource) *EventsHandler {
	return &EventsHandler{
		logs:  logs,
		slots: slots,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		ping: 5 * time.Second,
	}
}

// SlotEvents streams the slot events over a WebSocket
// @Summary Stream of slot events
// @Description Stream of the changes of the operation slots as JSON messages over a WebSocket
// @ID events-slots
// @Param kind query string false "Comma separated list of slot kinds"
// @Success 101 {object} api.SlotEvent
// @Failure 400 {object} api.Error
// @Failure 503 {object} api.Error
// @Security BasicAuth
// @Router /api/v1/events [get]
func (h *EventsHandler) SlotEvents(c echo.Context) error {
	kinds := []string{}

	for _, k := range strings.Split(util.DefaultQuery(c, "kind", ""), ",") {
		k = strings.TrimSpace(k)
		if len(k) == 0 {
			continue
		}

		kind, err := session.ParseKind(k)
		if err != nil {
			return api.Err(http.StatusBadRequest, "", "%s", err.Error())
		}

		kinds = append(kinds, string(kind))
	}

	evts, cancel, err := h.slots.Events(event.KindFilter(kinds...))
	if err != nil {
		return apiError(err)
	}
	defer cancel()

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader already responded
		return nil
	}
	defer ws.Close()

	// Messages from the client are discarded. A failed read means the
	// client has gone away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.ping)
	defer ticker.Stop()

	evt := api.SlotEvent{}

	for {
		select {
		case <-gone:
			return nil
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.ping)); err != nil {
				return nil
			}
		case e, ok := <-evts:
			if !ok {
				ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"), time.Now().Add(time.Second))
				return nil
			}

			if !evt.Unmarshal(e) {
				continue
			}

			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}

			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return nil
			}
		}
	}
}

// LogEvents returns a stream of log events
// @Summary Stream of log events
// @Description Stream of log events of whats happening in the application
// @ID events-log
// @Accept json
// @Produce text/event-stream
// @Produce json-stream
// @Param filters body api.LogEventFilters false "Event filters"
// @Success 200 {object} api.LogEvent
// @Security BasicAuth
// @Router /api/v1/events/log [post]
func (h *EventsHandler) LogEvents(c echo.Context) error {
	filters := api.LogEventFilters{}

	if err := util.ShouldBindOptionalJSON(c, &filters); err != nil {
		return api.Err(http.StatusBadRequest, "", "invalid JSON: %s", err.Error())
	}

	filter := map[string]*api.LogEventFilter{}

	for _, f := range filters.Filters {
		f := f

		if err := f.Compile(); err != nil {
			return api.Err(http.StatusBadRequest, "", "invalid filter: %s: %s", f.Component, err.Error())
		}

		filter[strings.ToLower(f.Component)] = &f
	}

	ticker := time.NewTicker(h.ping)
	defer ticker.Stop()

	req := c.Request()
	reqctx := req.Context()

	contentType := "text/event-stream"
	accept := req.Header.Get(echo.HeaderAccept)
	if strings.Contains(accept, "application/x-json-stream") {
		contentType = "application/x-json-stream"
	}

	res := c.Response()

	res.Header().Set(echo.HeaderContentType, contentType+"; charset=UTF-8")
	res.Header().Set(echo.HeaderCacheControl, "no-store")
	res.Header().Set(echo.HeaderConnection, "close")
	res.WriteHeader(http.StatusOK)

	evts, cancel := h.logs.Subscribe()
	defer cancel()

	enc := json.NewEncoder(res)
	enc.SetIndent("", "")

	filterEvent := func(e *api.LogEvent) bool {
		if len(filter) == 0 {
			return true
		}

		f, ok := filter[e.Component]
		if !ok {
			return false
		}

		return e.Filter(f)
	}

	keepalive := []byte(":keepalive\n\n")
	if contentType != "text/event-stream" {
		keepalive = []byte("{\"event\": \"keepalive\"}\n")
	}

	res.Write(keepalive)
	res.Flush()

	le := api.LogEvent{}

	for {
		select {
		case <-reqctx.Done():
			return nil
		case <-ticker.C:
			res.Write(keepalive)
			res.Flush()
		case e, ok := <-evts:
			if !ok {
				return nil
			}

			logEvent, ok := e.(*log.Event)
			if !ok {
				continue
			}

			le.Unmarshal(logEvent)

			if !filterEvent(&le) {
				continue
			}

			if contentType == "text/event-stream" {
				res.Write([]byte("event: " + le.Component + "\ndata: "))
			}

			if err := enc.Encode(le); err != nil {
				return err
			}

			if contentType == "text/event-stream" {
				res.Write([]byte("\n"))
			}

			res.Flush()
		}
	}
}
