package session

import (
	"context"

	"go.uber.org/zap"

	"scuolaguida/models"
	"scuolaguida/utils"
)

// SelectCompany persists the chosen autoscuola, then re-derives the role
// from a fresh identity payload. A network failure leaves the picker state
// untouched so the user can retry.
func (c *DefaultCoordinator) SelectCompany(ctx context.Context, companyID string) {
	if !c.begin() {
		return
	}
	defer c.end()

	if companyID == "" {
		c.toast(models.DangerToast("Seleziona un'autoscuola"))
		return
	}

	if _, err := c.API.SelectCompany(ctx, companyID); err != nil {
		utils.GetLogger().Warn("session: company selection failed",
			zap.Error(err), zap.String("companyId", companyID))
		c.toast(models.DangerToast("Errore di rete, riprova"))
		return
	}
	if err := c.Store.SetActiveCompanyID(companyID); err != nil {
		utils.GetLogger().Error("session: failed to persist active company", zap.Error(err))
	}
	c.API.SetCompanyID(companyID)
	c.RefreshMe(ctx)
}

// SelectStudent remembers which student an owner or instructor is working
// with, so the next launch loads the same agenda.
func (c *DefaultCoordinator) SelectStudent(studentID string) {
	if err := c.Store.SetLastStudentID(studentID); err != nil {
		utils.GetLogger().Error("session: failed to persist student selection", zap.Error(err))
		return
	}
	utils.GetLogger().Debug("session: student selected", zap.String("studentId", studentID))
}
