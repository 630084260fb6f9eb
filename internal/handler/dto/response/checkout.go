package response

import (
	"tickethub/internal/usecase/commands"
)

type CheckoutResponse struct {
	Issued []*TicketResponse     `json:"issued"`
	Failed []CheckoutLineFailure `json:"failed"`
}

type CheckoutLineFailure struct {
	LineIndex int    `json:"lineIndex"`
	Reason    string `json:"reason"`
}

type ValidationResponse struct {
	Ticket     *TicketResponse `json:"ticket"`
	BuyerName  string          `json:"buyerName"`
	BuyerEmail string          `json:"buyerEmail"`
}

func FromCheckoutResult(r *commands.CheckoutResult) *CheckoutResponse {
	issued := make([]*TicketResponse, len(r.Issued))
	for i, v := range r.Issued {
		issued[i] = FromTicketView(v)
	}
	failed := make([]CheckoutLineFailure, len(r.Failed))
	for i, f := range r.Failed {
		failed[i] = CheckoutLineFailure{LineIndex: f.LineIndex, Reason: f.Reason}
	}
	return &CheckoutResponse{Issued: issued, Failed: failed}
}

func FromValidationResult(r *commands.ValidationResult) *ValidationResponse {
	return &ValidationResponse{
		Ticket:     FromTicketView(r.Ticket),
		BuyerName:  r.BuyerName,
		BuyerEmail: r.BuyerEmail,
	}
}
