package services

import (
	"errors"
	"testing"

	"service-request-api/models"
)

func TestClassifyMember(t *testing.T) {
	cfg := testAppConfig() // internal org type id = 2

	internalOrg := &models.Organization{OrgID: 1, OrgTypeID: 2}
	externalOrg := &models.Organization{OrgID: 2, OrgTypeID: 5}

	cases := []struct {
		name string
		user models.User
		org  *models.Organization
		want MenuState
	}{
		{"pending member", models.User{MemberStatus: models.MemberStatusPending}, internalOrg, MenuStatePending},
		{"approved without org", models.User{MemberStatus: models.MemberStatusApproved}, nil, MenuStatePending},
		{"approved internal", models.User{MemberStatus: models.MemberStatusApproved}, internalOrg, MenuStateInternal},
		{"approved external", models.User{MemberStatus: models.MemberStatusApproved}, externalOrg, MenuStateExternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyMember(cfg, tc.user, tc.org); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestMenuSwitchSuccess(t *testing.T) {
	gateway := &fakeGateway{}
	diag := NewMenuSwitcher(gateway, testAppConfig()).Switch("line-A", MenuStateInternal)

	if !diag.Switched {
		t.Fatalf("expected switch to succeed: %+v", diag)
	}
	if len(gateway.unlinked) != 1 || gateway.unlinked[0] != "line-A" {
		t.Fatalf("expected unlink before link, got %v", gateway.unlinked)
	}
	if len(gateway.linked) != 1 || gateway.linked[0] != "line-A:menu-internal" {
		t.Fatalf("expected link to internal menu, got %v", gateway.linked)
	}
}

func TestMenuSwitchUnlinkFailureDoesNotBlockLink(t *testing.T) {
	gateway := &fakeGateway{unlinkErr: errors.New("gateway unreachable")}
	diag := NewMenuSwitcher(gateway, testAppConfig()).Switch("line-A", MenuStateExternal)

	if diag.UnlinkError == "" {
		t.Fatal("expected unlink diagnostic")
	}
	if !diag.Switched {
		t.Fatalf("link should still run after a failed unlink: %+v", diag)
	}
	if len(gateway.linked) != 1 || gateway.linked[0] != "line-A:menu-external" {
		t.Fatalf("expected link to external menu, got %v", gateway.linked)
	}
}

func TestMenuSwitchLinkFailureIsDiagnosticOnly(t *testing.T) {
	gateway := &fakeGateway{linkErr: errors.New("gateway unreachable")}
	diag := NewMenuSwitcher(gateway, testAppConfig()).Switch("line-A", MenuStateInternal)

	if diag.Switched {
		t.Fatal("switch must not report success when link failed")
	}
	if diag.LinkError == "" {
		t.Fatal("expected link diagnostic")
	}
}

func TestMenuSwitchRejectedStatusIsDiagnosticOnly(t *testing.T) {
	gateway := &fakeGateway{linkStatus: 404}
	diag := NewMenuSwitcher(gateway, testAppConfig()).Switch("line-A", MenuStatePending)

	if diag.Switched {
		t.Fatal("switch must not report success on a 4xx link")
	}
	if diag.LinkError == "" {
		t.Fatal("expected link diagnostic")
	}
}

func TestMenuSwitchWithoutHandle(t *testing.T) {
	gateway := &fakeGateway{}
	diag := NewMenuSwitcher(gateway, testAppConfig()).Switch("", MenuStateInternal)

	if diag.Switched {
		t.Fatal("no handle means nothing to switch")
	}
	if len(gateway.unlinked) != 0 || len(gateway.linked) != 0 {
		t.Fatal("gateway must not be called without a handle")
	}
}
