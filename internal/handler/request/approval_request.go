package request

// ApprovalPreviewReq asks which approvals would be submitted
type ApprovalPreviewReq struct {
	Network string `json:"network" binding:"required"`
	Spender string `json:"spender" binding:"required,eth_addr"`
	Amount  string `json:"amount" binding:"required,numeric"`
}

// ApprovalReq submits the approvals. Confirm must be true.
type ApprovalReq struct {
	ApprovalPreviewReq
	Confirm bool `json:"confirm"`
}
