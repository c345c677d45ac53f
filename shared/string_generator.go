package shared

import (
	"fmt"

	"github.com/satori/go.uuid"
)

type StringGenerator struct {
}

func (n *StringGenerator) GenerateUuid() string {
	return uuid.NewV4().String()
}

// GenerateDailyLogId derives the daily log id from its natural key so the
// same (child, date) pair always lands on the same row whichever device
// creates it first.
func (n *StringGenerator) GenerateDailyLogId(childId, date string) string {
	return fmt.Sprintf("%s_%s", childId, date)
}
