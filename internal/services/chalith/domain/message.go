// Package domain holds the Chalith component's message type and epoch
// processor.
package domain

import "github.com/simcesplatform/chalith-component/internal/messages"

// TypeChalith is the wire type name of Chalith result messages.
const TypeChalith = "Chalith"

// ChalithMessage carries one component's accumulated string value for an
// epoch.
type ChalithMessage struct {
	messages.Result
	ChalithValue string `json:"ChalithValue"`
}

func init() {
	messages.Register(TypeChalith, func() messages.Message { return &ChalithMessage{} })
}

// Validate checks the result section. The Chalith value itself may be any
// string, including empty.
func (m *ChalithMessage) Validate() error {
	return m.ValidateResult()
}
