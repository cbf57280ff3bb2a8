package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
)

type fakeGateway struct {
	pushed      []string // handles pushed to, in order
	pushTexts   []string
	transportFn map[string]error // per-handle transport failure
	statusFn    map[string]int   // per-handle HTTP status, default 200
	linked      []string
	unlinked    []string
	linkStatus  int
	linkErr     error
	unlinkErr   error
}

func (f *fakeGateway) PushMessage(to, text string) (GatewayResponse, error) {
	if err, ok := f.transportFn[to]; ok {
		return GatewayResponse{}, err
	}
	f.pushed = append(f.pushed, to)
	f.pushTexts = append(f.pushTexts, text)
	status := 200
	if s, ok := f.statusFn[to]; ok {
		status = s
	}
	return GatewayResponse{Status: status}, nil
}

func (f *fakeGateway) LinkRichMenu(to, richMenuID string) (GatewayResponse, error) {
	if f.linkErr != nil {
		return GatewayResponse{}, f.linkErr
	}
	f.linked = append(f.linked, to+":"+richMenuID)
	status := f.linkStatus
	if status == 0 {
		status = 200
	}
	return GatewayResponse{Status: status}, nil
}

func (f *fakeGateway) UnlinkRichMenu(to string) (GatewayResponse, error) {
	if f.unlinkErr != nil {
		return GatewayResponse{}, f.unlinkErr
	}
	f.unlinked = append(f.unlinked, to)
	return GatewayResponse{Status: 200}, nil
}

var (
	recipientsPattern = regexp.MustCompile(`(?s)SELECT u\.user_id, u\.role_id, u\.line_user_id.*FROM category_recipients`)
	countPattern      = regexp.MustCompile(`SELECT COUNT\(\*\) FROM channel_preferences WHERE user_id = \?`)
	channelsPattern   = regexp.MustCompile(`SELECT channel FROM channel_preferences WHERE user_id = \? AND enabled = 1`)
)

func recipientColumns() []string { return []string{"user_id", "role_id", "line_user_id"} }

// preferenceSteps plays back an already-bootstrapped user with the
// given enabled channels.
func preferenceSteps(userID int64, channels ...string) []*queryStep {
	channelRows := make([][]driver.Value, 0, len(channels))
	for _, ch := range channels {
		channelRows = append(channelRows, []driver.Value{ch})
	}
	return []*queryStep{
		{
			kind:    kindQuery,
			pattern: countPattern,
			args:    []driver.Value{userID},
			columns: []string{"COUNT(*)"},
			rows:    [][]driver.Value{{int64(2)}},
		},
		{
			kind:    kindQuery,
			pattern: channelsPattern,
			args:    []driver.Value{userID},
			columns: []string{"channel"},
			rows:    channelRows,
		},
	}
}

func TestDispatchZeroRecipients(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: recipientsPattern,
			args:    []driver.Value{int64(2)},
			columns: recipientColumns(),
			rows:    nil,
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	gateway := &fakeGateway{}
	report := NewDispatcher(db, gateway, testAppConfig()).Dispatch(2, "ทดสอบ")

	if report.Recipients != 0 || report.SentViaGateway != 0 || report.Skipped != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", report.Errors)
	}
	if len(gateway.pushed) != 0 {
		t.Fatal("gateway must not be called with zero recipients")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestDispatchIsolatesRecipientFailures(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: recipientsPattern,
			args:    []driver.Value{int64(2)},
			columns: recipientColumns(),
			rows: [][]driver.Value{
				{int64(101), int64(2), "line-A"},
				{int64(102), int64(2), "line-B"},
			},
		},
	}
	steps = append(steps, preferenceSteps(101, ChannelLine, ChannelWeb)...)
	steps = append(steps, preferenceSteps(102, ChannelLine, ChannelWeb)...)

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	gateway := &fakeGateway{
		transportFn: map[string]error{"line-A": errors.New("connection refused")},
	}
	report := NewDispatcher(db, gateway, testAppConfig()).Dispatch(2, "มีคำขอแจ้งซ่อมใหม่")

	if report.Recipients != 2 {
		t.Fatalf("expected 2 recipients, got %d", report.Recipients)
	}
	if report.SentViaGateway != 1 {
		t.Fatalf("expected 1 sent, got %d", report.SentViaGateway)
	}
	if len(report.Errors) != 1 || report.Errors[0].UserID != 101 {
		t.Fatalf("expected exactly user 101's failure, got %v", report.Errors)
	}
	if len(gateway.pushed) != 1 || gateway.pushed[0] != "line-B" {
		t.Fatalf("expected push to line-B only, got %v", gateway.pushed)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestDispatchGatewayRejectionCountsAsError(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: recipientsPattern,
			args:    []driver.Value{int64(1)},
			columns: recipientColumns(),
			rows:    [][]driver.Value{{int64(101), int64(2), "line-A"}},
		},
	}
	steps = append(steps, preferenceSteps(101, ChannelLine)...)

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	gateway := &fakeGateway{statusFn: map[string]int{"line-A": 400}}
	report := NewDispatcher(db, gateway, testAppConfig()).Dispatch(1, "ทดสอบ")

	if report.SentViaGateway != 0 {
		t.Fatalf("expected 0 sent, got %d", report.SentViaGateway)
	}
	if len(report.Errors) != 1 || report.Errors[0].UserID != 101 {
		t.Fatalf("expected user 101's rejection, got %v", report.Errors)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestDispatchSkipsRecipientWithoutLineHandle(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: recipientsPattern,
			args:    []driver.Value{int64(2)},
			columns: recipientColumns(),
			rows:    [][]driver.Value{{int64(103), int64(2), nil}},
		},
	}
	steps = append(steps, preferenceSteps(103, ChannelLine, ChannelWeb)...)

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	gateway := &fakeGateway{}
	report := NewDispatcher(db, gateway, testAppConfig()).Dispatch(2, "ทดสอบ")

	if report.Skipped != 1 {
		t.Fatalf("expected 1 skipped, got %d", report.Skipped)
	}
	if report.SentViaGateway != 0 || len(report.Errors) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(gateway.pushed) != 0 {
		t.Fatal("gateway must not be called for a recipient without a handle")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestDispatchWebOnlyRecipientNeedsNoGatewayCall(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: recipientsPattern,
			args:    []driver.Value{int64(3)},
			columns: recipientColumns(),
			rows:    [][]driver.Value{{int64(104), int64(2), "line-C"}},
		},
	}
	steps = append(steps, preferenceSteps(104, ChannelWeb)...)

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	gateway := &fakeGateway{}
	report := NewDispatcher(db, gateway, testAppConfig()).Dispatch(3, "ทดสอบ")

	if report.Recipients != 1 || report.SentViaGateway != 0 || report.Skipped != 0 || len(report.Errors) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(gateway.pushed) != 0 {
		t.Fatal("web-only recipient must not trigger a gateway call")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
