package ws

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/policy"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/view"
	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/logging"
	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/monitoring"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/id"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Local renderer; the server binds loopback
		return true
	},
}

// Marker records batch URLs that landed in a view
type Marker interface {
	MarkOpened(batchID, url, viewID string) bool
}

// Gateway terminates renderer connections. Engine events come in,
// policy decisions go back out as directives.
type Gateway struct {
	views   *view.Manager
	marker  Marker
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu    sync.RWMutex
	conns map[string]*connection // Protected by mu
}

// connection pairs a socket with its write lock. gorilla allows one
// concurrent writer per conn.
type connection struct {
	id   string
	sock *websocket.Conn
	mu   sync.Mutex
}

func (c *connection) write(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock.WriteJSON(v)
}

// NewGateway creates a gateway. marker may be nil when batch
// attribution is not wired.
func NewGateway(views *view.Manager, marker Marker, logger *logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Gateway{
		views:  views,
		marker: marker,
		logger: logger,
		conns:  make(map[string]*connection),
	}
}

// WithMetrics adds metrics tracking to the gateway
func (g *Gateway) WithMetrics(metrics *monitoring.Metrics) *Gateway {
	g.metrics = metrics
	return g
}

// HandleConnection upgrades the request and serves the event loop
// until the renderer disconnects
func (g *Gateway) HandleConnection(c *gin.Context) {
	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &connection{id: uuid.NewString(), sock: sock}
	g.register(conn)
	defer g.unregister(conn)

	g.push(conn, Directive{
		Type:    DirectiveSystem,
		Message: "connected",
	})
	g.logger.Info("renderer connected", zap.String("conn_id", conn.id))

	for {
		var evt Event
		if err := sock.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.logger.Warn("websocket read failed",
					zap.String("conn_id", conn.id),
					zap.Error(err),
				)
			}
			return
		}

		if g.metrics != nil {
			g.metrics.RecordWSMessage("in", evt.Type)
		}
		g.handleEvent(conn, evt)
	}
}

func (g *Gateway) register(conn *connection) {
	g.mu.Lock()
	g.conns[conn.id] = conn
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.IncWSConnections()
	}
}

func (g *Gateway) unregister(conn *connection) {
	g.mu.Lock()
	delete(g.conns, conn.id)
	g.mu.Unlock()

	conn.sock.Close()
	if g.metrics != nil {
		g.metrics.DecWSConnections()
	}
	g.logger.Info("renderer disconnected", zap.String("conn_id", conn.id))
}

// Connections returns the number of connected renderers
func (g *Gateway) Connections() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.conns)
}

// handleEvent routes one engine callback through the view's policy
// machine and pushes whatever directives the decision calls for
func (g *Gateway) handleEvent(conn *connection, evt Event) {
	if evt.Type == EventPing {
		g.push(conn, Directive{Type: DirectivePong})
		return
	}

	session, ok := g.views.Session(evt.ViewID)
	if !ok {
		g.pushError(conn, fmt.Sprintf("unknown view: %s", evt.ViewID))
		return
	}

	switch evt.Type {
	case EventWillNavigate:
		g.apply(conn, evt, session, session.Machine().OnWillNavigate(evt.URL))
	case EventRedirect:
		g.apply(conn, evt, session, session.Machine().OnRedirect(evt.URL))
	case EventNewWindow:
		g.apply(conn, evt, session, session.Machine().OnNewWindow(evt.URL))
	case EventLoadStart:
		g.apply(conn, evt, session, session.Machine().OnLoadStart(evt.URL))
	case EventLoadStop:
		// Engines report stop between start and finish; nothing to decide
	case EventLoadFinish:
		decision := session.Machine().OnLoadFinish(evt.URL, evt.Title)
		session.SetCurrent(evt.URL, evt.Title)
		g.markBatch(session, evt.URL)
		g.apply(conn, evt, session, decision)
	case EventLoadFail:
		g.apply(conn, evt, session, session.Machine().OnLoadFail(evt.URL, evt.Code, evt.Description))
	case EventTitleChanged:
		session.SetTitle(evt.Title)
	case EventSetCookie:
		if evt.Cookie != nil {
			session.Cookies().Set(*evt.Cookie)
		}
	case EventWindowMoved:
		g.views.UpdateWindow(evt.ViewID, evt.Position, evt.Size)
	default:
		g.pushError(conn, fmt.Sprintf("unknown event type: %s", evt.Type))
	}
}

// apply turns one policy decision into directives and metrics
func (g *Gateway) apply(conn *connection, evt Event, session *view.Session, d policy.Decision) {
	if g.metrics != nil {
		g.metrics.RecordNavigation(evt.Type, string(d.Action))
		if d.AuthStarted {
			g.metrics.RecordAuthFlow("started")
		}
		if d.AuthCompleted {
			g.metrics.RecordAuthFlow("completed")
		}
		if d.AuthExpired {
			g.metrics.RecordAuthFlow("expired")
		}
	}

	switch d.Action {
	case policy.ActionLoadURL:
		g.push(conn, Directive{
			Type:   DirectiveAuthRedirect,
			ViewID: session.ID(),
			URL:    d.URL,
		})
	case policy.ActionDenyWindow:
		g.push(conn, Directive{
			Type:     DirectiveWindowDenied,
			ViewID:   session.ID(),
			URL:      evt.URL,
			Notice:   d.Notice,
			NoticeID: id.NewNoticeID().String(),
		})
	}

	if d.Notice != nil {
		if g.metrics != nil {
			g.metrics.RecordNotice(string(d.Notice.Level))
		}
		if d.Action != policy.ActionDenyWindow {
			g.push(conn, Directive{
				Type:     DirectiveNotice,
				ViewID:   session.ID(),
				Notice:   d.Notice,
				NoticeID: id.NewNoticeID().String(),
			})
		}
	}

	if d.AuthStarted {
		g.logger.Info("auth flow started",
			zap.String("view_id", session.ID()),
			zap.String("url", evt.URL),
			zap.String("source", evt.Type),
		)
	}
	if d.AuthCompleted {
		g.logger.Info("auth flow completed",
			zap.String("view_id", session.ID()),
			zap.String("url", evt.URL),
		)
	}
	if d.AuthExpired {
		g.logger.Info("auth flow expired", zap.String("view_id", session.ID()))
	}
	if d.Suppressed {
		g.logger.Debug("load failure suppressed",
			zap.String("view_id", session.ID()),
			zap.String("url", evt.URL),
			zap.Int("code", evt.Code),
		)
	}
}

// markBatch flips the batch item for a load that completed in a
// batch-attributed view
func (g *Gateway) markBatch(session *view.Session, url string) {
	if g.marker == nil {
		return
	}
	v := session.Snapshot()
	if v.BatchID == nil {
		return
	}
	g.marker.MarkOpened(*v.BatchID, url, v.ID)
}

// push sends one directive on one connection
func (g *Gateway) push(conn *connection, d Directive) {
	d.Timestamp = time.Now().Unix()
	if err := conn.write(d); err != nil {
		g.logger.Warn("websocket write failed",
			zap.String("conn_id", conn.id),
			zap.String("type", d.Type),
			zap.Error(err),
		)
		return
	}
	if g.metrics != nil {
		g.metrics.RecordWSMessage("out", d.Type)
	}
}

func (g *Gateway) pushError(conn *connection, msg string) {
	g.push(conn, Directive{Type: DirectiveError, Message: msg})
}

// Broadcast sends a directive to every connected renderer. The
// desktop shell normally has exactly one.
func (g *Gateway) Broadcast(d Directive) {
	g.mu.RLock()
	conns := make([]*connection, 0, len(g.conns))
	for _, c := range g.conns {
		conns = append(conns, c)
	}
	g.mu.RUnlock()

	for _, c := range conns {
		g.push(c, d)
	}
}

// SendLoadURL tells the renderer to load a URL in an existing view
func (g *Gateway) SendLoadURL(viewID, url, batchID string) {
	g.Broadcast(Directive{
		Type:    DirectiveLoadURL,
		ViewID:  viewID,
		URL:     url,
		BatchID: batchID,
	})
}

// SendOpenView tells the renderer to create a webview for a
// shell-initiated view
func (g *Gateway) SendOpenView(v *types.View, batchID string) {
	g.Broadcast(Directive{
		Type:    DirectiveOpenView,
		ViewID:  v.ID,
		URL:     v.URL,
		BatchID: batchID,
		View:    v,
	})
}

// SendNotice surfaces a notice outside any navigation flow
func (g *Gateway) SendNotice(viewID string, notice types.Notice) {
	if g.metrics != nil {
		g.metrics.RecordNotice(string(notice.Level))
	}
	g.Broadcast(Directive{
		Type:     DirectiveNotice,
		ViewID:   viewID,
		Notice:   &notice,
		NoticeID: id.NewNoticeID().String(),
	})
}
