package world

import (
	"fmt"

	"museumbot/internal/protocol"
	modelpkg "museumbot/internal/sim/world/kernel/model"
)

func (w *World) audit(tick uint64, action, exhibitID, code, reason string) {
	if w.auditLogger == nil {
		return
	}
	_ = w.auditLogger.WriteAudit(AuditEntry{
		Tick:      tick,
		Action:    action,
		ExhibitID: exhibitID,
		Code:      code,
		Reason:    reason,
	})
}

// invalidOp records a rejected command. The command is dropped; callers never see the error.
func (w *World) invalidOp(tick uint64, action, exhibitID, detail string, err error) {
	w.counters.invalidOps++
	w.logger.Printf("tick=%d %s rejected: %s (%s)", tick, action, err, detail)
	w.audit(tick, action, exhibitID, protocol.ErrInvalidOperation, detail)
}

func formatVec(v modelpkg.Vec3) string {
	return fmt.Sprintf("%.3f,%.3f,%.3f", v.X, v.Y, v.Z)
}
