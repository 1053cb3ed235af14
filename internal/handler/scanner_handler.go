package handler

import (
	"context"
	"time"

	"safescan/internal/handler/request"
	"safescan/internal/handler/response"
	"safescan/internal/session"
	"safescan/pkg/errno"
	"safescan/pkg/networks"
	"safescan/pkg/validator"

	"github.com/gin-gonic/gin"
)

// ScannerHandler is the scanner panel. It holds no state of its own: every
// response is rendered from the session snapshot.
type ScannerHandler struct {
	session         *session.Session
	approvalTimeout time.Duration
}

func NewScannerHandler(s *session.Session, approvalTimeout time.Duration) *ScannerHandler {
	return &ScannerHandler{session: s, approvalTimeout: approvalTimeout}
}

type panelView struct {
	session.Snapshot
	Networks []networks.Network `json:"networks"`
}

func (h *ScannerHandler) panel() panelView {
	return panelView{Snapshot: h.session.Snapshot(), Networks: networks.All()}
}

// Panel renders connection state, counters, recent scans and the network grid
func (h *ScannerHandler) Panel(c *gin.Context) {
	response.Success(c, h.panel())
}

func (h *ScannerHandler) Networks(c *gin.Context) {
	response.Success(c, networks.All())
}

func (h *ScannerHandler) Connect(c *gin.Context) {
	if _, err := h.session.Connect(c.Request.Context()); err != nil {
		response.ErrorWithData(c, err, h.panel())
		return
	}
	response.Success(c, h.panel())
}

func (h *ScannerHandler) Disconnect(c *gin.Context) {
	h.session.Disconnect()
	response.Success(c, h.panel())
}

// PreviewApproval shows exactly which contracts, spender and amount would be
// approved. Nothing is sent to the wallet.
func (h *ScannerHandler) PreviewApproval(c *gin.Context) {
	var req request.ApprovalPreviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	plan, err := h.session.Preview(session.ApprovalRequest{
		Network: req.Network,
		Spender: req.Spender,
		Amount:  req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, plan)
}

// Approve runs the confirmed approval flow
func (h *ScannerHandler) Approve(c *gin.Context) {
	var req request.ApprovalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	ctx := c.Request.Context()
	if h.approvalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.approvalTimeout)
		defer cancel()
	}

	results, err := h.session.Approve(ctx, session.ApprovalRequest{
		Network: req.Network,
		Spender: req.Spender,
		Amount:  req.Amount,
		Confirm: req.Confirm,
	})
	if err != nil {
		response.ErrorWithData(c, err, gin.H{"panel": h.panel(), "results": results})
		return
	}
	response.Success(c, gin.H{"panel": h.panel(), "results": results})
}

func bindError(err error) error {
	return errno.Errno{
		Code:    errno.ErrBind.Code,
		Message: validator.GetErrorMsg(err),
	}
}
