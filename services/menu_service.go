package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"service-request-api/config"
	"service-request-api/models"
)

// MenuState is the LINE rich-menu state assigned to a member.
type MenuState string

const (
	MenuStatePending  MenuState = "PENDING"
	MenuStateInternal MenuState = "INTERNAL"
	MenuStateExternal MenuState = "EXTERNAL"
)

// MenuSwitchDiag carries the outcome of one menu switch. Failures are
// never surfaced to the triggering flow; they live here for echo-back.
type MenuSwitchDiag struct {
	State       MenuState `json:"state"`
	Switched    bool      `json:"switched"`
	UnlinkError string    `json:"unlink_error,omitempty"`
	LinkError   string    `json:"link_error,omitempty"`
}

// ClassifyMember computes the menu state for a user: held in PENDING
// until their membership is approved with an organization, then
// INTERNAL when the organization's type matches the configured
// internal type id, EXTERNAL otherwise.
func ClassifyMember(cfg *config.AppConfig, user models.User, org *models.Organization) MenuState {
	if user.MemberStatus != models.MemberStatusApproved || org == nil {
		return MenuStatePending
	}
	if org.OrgTypeID == cfg.InternalOrgTypeID {
		return MenuStateInternal
	}
	return MenuStateExternal
}

// MenuSwitcher moves a member's LINE rich menu between the pending,
// internal and external states.
type MenuSwitcher struct {
	gateway LineGateway
	cfg     *config.AppConfig
}

func NewMenuSwitcher(gateway LineGateway, cfg *config.AppConfig) *MenuSwitcher {
	return &MenuSwitcher{gateway: gateway, cfg: cfg}
}

func (m *MenuSwitcher) menuIDFor(state MenuState) string {
	switch state {
	case MenuStateInternal:
		return m.cfg.RichMenus.Internal
	case MenuStateExternal:
		return m.cfg.RichMenus.External
	default:
		return m.cfg.RichMenus.Pending
	}
}

// Switch unlinks whatever menu the user currently has, then links the
// menu for the target state. Both calls are independent best-effort;
// neither failure reaches the caller as an error.
func (m *MenuSwitcher) Switch(lineUserID string, state MenuState) MenuSwitchDiag {
	diag := MenuSwitchDiag{State: state}

	if lineUserID == "" {
		diag.LinkError = "no line user id on file"
		return diag
	}

	if resp, err := m.gateway.UnlinkRichMenu(lineUserID); err != nil {
		diag.UnlinkError = err.Error()
	} else if !resp.OK() {
		diag.UnlinkError = fmt.Sprintf("gateway returned status %d", resp.Status)
	}

	menuID := m.menuIDFor(state)
	if menuID == "" {
		diag.LinkError = fmt.Sprintf("no rich menu configured for state %s", state)
		return diag
	}

	if resp, err := m.gateway.LinkRichMenu(lineUserID, menuID); err != nil {
		diag.LinkError = err.Error()
	} else if !resp.OK() {
		diag.LinkError = fmt.Sprintf("gateway returned status %d", resp.Status)
	} else {
		diag.Switched = true
	}

	if diag.UnlinkError != "" || diag.LinkError != "" {
		log.Printf("menu switch (state=%s): unlink=%q link=%q", state, diag.UnlinkError, diag.LinkError)
	}
	return diag
}

// SwitchForUser classifies the user from the database and moves their
// menu accordingly. Safe to call from login and approval flows.
func (m *MenuSwitcher) SwitchForUser(db *gorm.DB, userID int) MenuSwitchDiag {
	var user models.User
	if err := db.Preload("Organization").
		Where("user_id = ? AND delete_at IS NULL", userID).
		First(&user).Error; err != nil {
		return MenuSwitchDiag{State: MenuStatePending, LinkError: "user not found"}
	}

	state := ClassifyMember(m.cfg, user, user.Organization)
	lineUserID := ""
	if user.LineUserID != nil {
		lineUserID = *user.LineUserID
	}
	return m.Switch(lineUserID, state)
}
