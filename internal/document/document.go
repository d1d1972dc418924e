package document

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Document statuses. Completado and rechazado are terminal by convention
// only, the data layer never blocks further movements.
const (
	StatusPendiente  = "pendiente"
	StatusEnProceso  = "en_proceso"
	StatusCompletado = "completado"
	StatusRechazado  = "rechazado"
)

// Movement actions as recorded in the trail.
const (
	ActionCreacion   = "creacion"
	ActionDerivado   = "derivado"
	ActionRevision   = "revision"
	ActionPendiente  = "pendiente"
	ActionCompletado = "completado"
	ActionRechazado  = "rechazado"
)

// actionStatus is the fixed action to resulting-status table.
var actionStatus = map[string]string{
	ActionCreacion:   StatusPendiente,
	ActionDerivado:   StatusEnProceso,
	ActionRevision:   StatusPendiente,
	ActionPendiente:  StatusPendiente,
	ActionCompletado: StatusCompletado,
	ActionRechazado:  StatusRechazado,
}

// actionsNeedingDestination lists actions that must carry a destination
// department. The rest fall back to the document's current department.
var actionsNeedingDestination = map[string]bool{
	ActionCreacion: true,
	ActionDerivado: true,
	ActionRevision: true,
}

func IsValidAction(action string) bool {
	_, ok := actionStatus[action]
	return ok
}

func StatusForAction(action string) (string, bool) {
	status, ok := actionStatus[action]
	return status, ok
}

func RequiresDestination(action string) bool {
	return actionsNeedingDestination[action]
}

// Document is a tracked file moving between departments.
type Document struct {
	ID                  int64     `json:"id" gorm:"primaryKey"`
	DocumentCode        string    `json:"document_code"`
	Subject             string    `json:"subject"`
	Description         string    `json:"description,omitempty"`
	Status              string    `json:"status"`
	CurrentDepartmentID int64     `json:"current_department_id"`
	CreatedBy           int64     `json:"created_by"`
	HasAttachments      bool      `json:"has_attachments"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}

// Movement is one entry of a document's trail. FromDepartmentID is NULL for
// the initial creacion movement.
type Movement struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	DocumentID       int64     `json:"document_id"`
	FromDepartmentID *int64    `json:"from_department_id,omitempty"`
	ToDepartmentID   int64     `json:"to_department_id"`
	Action           string    `json:"action"`
	Notes            string    `json:"notes,omitempty"`
	UserID           int64     `json:"user_id"`
	CreatedAt        time.Time `json:"created_at"`
}

func (Movement) TableName() string {
	return "document_movements"
}

// MovementDetail is a movement joined with display names for the history
// view.
type MovementDetail struct {
	Movement
	FromDepartmentName *string `json:"from_department_name,omitempty"`
	ToDepartmentName   string  `json:"to_department_name"`
	UserFullName       string  `json:"user_full_name"`
}

const codePrefix = "DOC-"

// GenerateDocumentCode builds the business code DOC-<base36 millis>-<3 rand>,
// all uppercase. Uniqueness rests on the millisecond timestamp plus the
// random suffix.
func GenerateDocumentCode() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	return codePrefix + ts + "-" + randomSuffix(3)
}

const suffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomSuffix(n int) string {
	var b strings.Builder
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the process is in real trouble,
			// fall back to a fixed character rather than panic
			b.WriteByte('0')
			continue
		}
		b.WriteByte(suffixAlphabet[idx.Int64()])
	}
	return b.String()
}

// ValidateDocumentCode checks the scan-path format. Only the prefix is
// validated, the rest of the code is opaque.
func ValidateDocumentCode(code string) error {
	if !strings.HasPrefix(code, codePrefix) {
		return fmt.Errorf("document code must start with %s", codePrefix)
	}
	return nil
}
