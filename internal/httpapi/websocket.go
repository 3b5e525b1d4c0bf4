package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kapu/emotion-map-go/internal/constants"
	apperrors "github.com/kapu/emotion-map-go/pkg/errors"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 90 * time.Second
)

// wsFrame is what the server sends back for each request frame.
// Type is "analysis" on success and "error" on failure.
type wsFrame struct {
	Type     string     `json:"type"`
	ID       int64      `json:"id,omitempty"`
	Analysis any        `json:"analysis,omitempty"`
	Provider string     `json:"provider,omitempty"`
	Model    string     `json:"model,omitempty"`
	Error    *errorBody `json:"error,omitempty"`
}

// AnalyzeWS handles GET /ws/analyze. The client sends analyze request frames
// as JSON; each one gets a single analysis or error frame in reply. Frames
// are processed sequentially on the connection.
func (h *Handler) AnalyzeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(constants.AILimits.WSMaxMessageBytes)
	conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	h.logger.Info("WebSocket session opened", zap.String("remote", conn.RemoteAddr().String()))

	for {
		var req AnalyzeRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("WebSocket read failed", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongTimeout))

		frame := h.analyzeFrame(c, &req)

		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			h.logger.Warn("WebSocket write failed", zap.Error(err))
			return
		}
	}
}

func (h *Handler) analyzeFrame(c *gin.Context, req *AnalyzeRequest) wsFrame {
	input := req.toInput()
	analysis, metadata, err := h.analyzer.Analyze(c.Request.Context(), &input, req.APIKey)
	if err != nil {
		return wsFrame{
			Type: "error",
			Error: &errorBody{
				Code:    apperrors.CodeOf(err),
				Message: err.Error(),
			},
		}
	}

	frame := wsFrame{Type: "analysis", Analysis: analysis}
	if metadata != nil {
		frame.Provider = metadata.Provider
		frame.Model = metadata.Model
	}

	if h.history != nil {
		record := recordFromResult(input, analysis, metadata)
		if id, err := h.history.Record(c.Request.Context(), record); err != nil {
			h.logger.Warn("Failed to record analysis history", zap.Error(err))
		} else {
			frame.ID = id
		}
	}

	return frame
}
