package memory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/repositories/schema"
)

// Fixed identifiers of the demo data set. They are stable across restarts so that
// links and bookmarks taken against the demo keep working.
const (
	SeedApplicantID      = "00000000-0000-4000-8000-000000000101"
	SeedApproverID       = "00000000-0000-4000-8000-000000000102"
	SeedFinalApproverID  = "00000000-0000-4000-8000-000000000103"
	SeedCodeExpenseID    = "00000000-0000-4000-8000-000000000201"
	SeedCodeTravelID     = "00000000-0000-4000-8000-000000000202"
	SeedCodeLeaveID      = "00000000-0000-4000-8000-000000000203"
	SeedCodePurchaseID   = "00000000-0000-4000-8000-000000000204"
	SeedSingleStepRoute  = "00000000-0000-4000-8000-000000000301"
	SeedTwoStepRoute     = "00000000-0000-4000-8000-000000000302"
	SeedPostedAppID      = "00000000-0000-4000-8000-000000000401"
	SeedPendingAppID     = "00000000-0000-4000-8000-000000000402"
	SeedPostedBatchID    = "00000000-0000-4000-8000-000000000501"
	seedLineIDFormat     = "00000000-0000-4000-8000-%012d"
	seedNotificationID   = "00000000-0000-4000-8000-000000000701"
	seedPostedBatchLines = 601
)

var seedTime = time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)

// NewSeeded returns a store holding a small representative record for every table.
func NewSeeded() *Store {
	s := New()
	for _, r := range seedRows() {
		if _, err := s.insertLocked(r.table, r.row); err != nil {
			panic(fmt.Sprintf("memory: invalid seed row for %s: %v", r.table, err))
		}
	}
	return s
}

type seedRow struct {
	table string
	row   portsrepo.Row
}

func seedRows() []seedRow {
	approvedAt := seedTime.Add(48 * time.Hour)
	postedAt := seedTime.Add(72 * time.Hour)

	rows := []seedRow{
		{schema.Users, portsrepo.Row{"id": SeedApplicantID, "name": "佐藤 花子", "email": "hanako.sato@example.com"}},
		{schema.Users, portsrepo.Row{"id": SeedApproverID, "name": "鈴木 一郎", "email": "ichiro.suzuki@example.com"}},
		{schema.Users, portsrepo.Row{"id": SeedFinalApproverID, "name": "高橋 健", "email": "ken.takahashi@example.com"}},

		{schema.ApplicationCodes, portsrepo.Row{"id": SeedCodeExpenseID, "code": "EXP", "name": "経費精算"}},
		{schema.ApplicationCodes, portsrepo.Row{"id": SeedCodeTravelID, "code": "TRP", "name": "出張申請"}},
		{schema.ApplicationCodes, portsrepo.Row{"id": SeedCodeLeaveID, "code": "LEV", "name": "休暇申請"}},
		{schema.ApplicationCodes, portsrepo.Row{"id": SeedCodePurchaseID, "code": "PUR", "name": "購買申請"}},

		{schema.ApprovalRoutes, portsrepo.Row{"id": SeedSingleStepRoute, "name": "課長承認", "created_at": seedTime,
			"steps": []any{map[string]any{"approver_id": SeedApproverID}}}},
		{schema.ApprovalRoutes, portsrepo.Row{"id": SeedTwoStepRoute, "name": "課長・部長承認", "created_at": seedTime,
			"steps": []any{map[string]any{"approver_id": SeedApproverID}, map[string]any{"approver_id": SeedFinalApproverID}}}},

		{schema.ChartOfAccounts, portsrepo.Row{"code": "1110", "name": "現金", "category": "ASSET"}},
		{schema.ChartOfAccounts, portsrepo.Row{"code": "1120", "name": "普通預金", "category": "ASSET"}},
		{schema.ChartOfAccounts, portsrepo.Row{"code": "2110", "name": "未払金", "category": "LIABILITY"}},
		{schema.ChartOfAccounts, portsrepo.Row{"code": "6100", "name": "旅費交通費", "category": "EXPENSE"}},
		{schema.ChartOfAccounts, portsrepo.Row{"code": "6200", "name": "消耗品費", "category": "EXPENSE"}},
		{schema.ChartOfAccounts, portsrepo.Row{"code": "6300", "name": "通信費", "category": "EXPENSE"}},
		{schema.ChartOfAccounts, portsrepo.Row{"code": "6400", "name": "会議費", "category": "EXPENSE"}},

		{schema.Applications, portsrepo.Row{
			"id": SeedPostedAppID, "applicant_id": SeedApplicantID, "application_code_id": SeedCodeExpenseID,
			"form_data": map[string]any{
				"description": "4月 客先訪問",
				"items": []any{
					map[string]any{"account_code": "6100", "amount": "4800", "description": "新幹線"},
					map[string]any{"account_code": "6400", "amount": "1200", "description": "打合せ飲料"},
				},
			},
			"status": "approved", "submitted_at": seedTime, "approved_at": approvedAt,
			"current_level": 2, "approver_id": SeedApproverID, "approval_route_id": SeedSingleStepRoute,
			"accounting_status": "posted", "created_at": seedTime, "updated_at": postedAt,
		}},
		{schema.Applications, portsrepo.Row{
			"id": SeedPendingAppID, "applicant_id": SeedApplicantID, "application_code_id": SeedCodeTravelID,
			"form_data": map[string]any{"total_amount": "32000", "account_code": "6100", "description": "大阪出張"},
			"status": "pending_approval", "submitted_at": seedTime, "current_level": 1,
			"approver_id": SeedApproverID, "approval_route_id": SeedTwoStepRoute,
			"accounting_status": "none", "created_at": seedTime, "updated_at": seedTime,
		}},

		{schema.JournalBatches, portsrepo.Row{"id": SeedPostedBatchID, "source_application_id": SeedPostedAppID,
			"status": "posted", "created_at": approvedAt, "posted_at": postedAt}},

		{schema.NotificationEmails, portsrepo.Row{
			"id": seedNotificationID, "application_id": SeedPostedAppID, "audience": "applicant",
			"recipients": []any{"hanako.sato@example.com"}, "subject": "[承認] 経費精算", "body": "申請が承認されました。",
			"status_at_send": "approved", "message_id": "seed-0001", "sent_at": approvedAt,
		}},
	}

	lines := []struct {
		code, name, desc string
		debit, credit    int64
	}{
		{"6100", "旅費交通費", "新幹線", 4800, 0},
		{"6400", "会議費", "打合せ飲料", 1200, 0},
		{"2110", "未払金", "4月 客先訪問", 0, 6000},
	}
	for i, l := range lines {
		rows = append(rows, seedRow{schema.JournalLines, portsrepo.Row{
			"id": fmt.Sprintf(seedLineIDFormat, seedPostedBatchLines+i), "batch_id": SeedPostedBatchID,
			"account_code": l.code, "account_name": l.name, "description": l.desc,
			"debit_amount": decimal.NewFromInt(l.debit), "credit_amount": decimal.NewFromInt(l.credit),
			"sort_index": i,
		}})
	}
	return rows
}
