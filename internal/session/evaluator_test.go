package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func ptr[T any](v T) *T { return &v }

// sampleDates покрывает конец месяца, високосный день и переход года.
var sampleDates = []time.Time{
	date(2024, 1, 1),
	date(2024, 2, 29),
	date(2024, 3, 31),
	date(2024, 12, 31),
	date(2025, 6, 15),
}

func TestEvaluate(t *testing.T) {
	today := date(2024, 1, 10)

	tests := []struct {
		name string
		acc  models.Account
		want Decision
	}{
		{
			name: "new user defaults",
			acc:  models.DefaultAccount(models.AuthUser{ID: "u1"}),
			want: Active(),
		},
		{
			name: "expired nine days ago",
			acc:  models.Account{Role: models.RoleUser, Status: models.StatusActive, SubscriptionExpiresAt: ptr(date(2024, 1, 1))},
			want: Expired(9),
		},
		{
			name: "expired at the first representable date",
			acc:  models.Account{Role: models.RoleUser, Status: models.StatusActive, SubscriptionExpiresAt: ptr(date(1, 1, 1))},
			want: Expired(738894),
		},
		{
			name: "expires today",
			acc:  models.Account{Role: models.RoleUser, Status: models.StatusActive, SubscriptionExpiresAt: ptr(today)},
			want: WarningActive(0),
		},
		{
			name: "expires in three days",
			acc:  models.Account{Role: models.RoleUser, Status: models.StatusActive, SubscriptionExpiresAt: ptr(date(2024, 1, 13))},
			want: WarningActive(3),
		},
		{
			name: "expires in a month",
			acc:  models.Account{Role: models.RoleUser, Status: models.StatusActive, SubscriptionExpiresAt: ptr(date(2024, 2, 10))},
			want: Active(),
		},
		{
			name: "blocked without expiry",
			acc:  models.Account{Role: models.RoleUser, Status: models.StatusBlocked},
			want: Blocked(),
		},
		{
			name: "blocked admin with expired subscription",
			acc:  models.Account{Role: models.RoleAdmin, Status: models.StatusBlocked, SubscriptionExpiresAt: ptr(date(2023, 1, 1))},
			want: Blocked(),
		},
		{
			name: "admin with long expired subscription",
			acc:  models.Account{Role: models.RoleAdmin, Status: models.StatusActive, SubscriptionExpiresAt: ptr(date(2020, 1, 1))},
			want: Active(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.acc, today))
		})
	}
}

func TestEvaluate_BlockedWinsOverEverything(t *testing.T) {
	for _, role := range []models.Role{models.RoleUser, models.RoleAdmin} {
		for _, d := range sampleDates {
			for _, expiry := range []*time.Time{nil, ptr(d.AddDate(0, 0, -30)), ptr(d), ptr(d.AddDate(0, 0, 3)), ptr(d.AddDate(1, 0, 0))} {
				acc := models.Account{Role: role, Status: models.StatusBlocked, SubscriptionExpiresAt: expiry}
				assert.Equal(t, Blocked(), Evaluate(acc, d), "role=%s today=%s", role, d)
			}
		}
	}
}

func TestEvaluate_AdminNeverExpiresOrWarns(t *testing.T) {
	for _, d := range sampleDates {
		for offset := -400; offset <= 400; offset += 7 {
			acc := models.Account{Role: models.RoleAdmin, Status: models.StatusActive, SubscriptionExpiresAt: ptr(d.AddDate(0, 0, offset))}
			got := Evaluate(acc, d)
			assert.Equal(t, KindActive, got.Kind, "offset=%d today=%s", offset, d)
		}
	}
}

func TestEvaluate_Boundaries(t *testing.T) {
	user := func(expiry time.Time) models.Account {
		return models.Account{Role: models.RoleUser, Status: models.StatusActive, SubscriptionExpiresAt: &expiry}
	}

	for _, d := range sampleDates {
		t.Run(d.Format("2006-01-02"), func(t *testing.T) {
			assert.Equal(t, WarningActive(0), Evaluate(user(d), d), "same day")
			assert.Equal(t, Expired(1), Evaluate(user(d), d.AddDate(0, 0, 1)), "day after")
			assert.Equal(t, WarningActive(5), Evaluate(user(d), d.AddDate(0, 0, -5)), "five days before")
			assert.Equal(t, Active(), Evaluate(user(d), d.AddDate(0, 0, -6)), "six days before")
		})
	}
}

func TestEvaluate_TimeOfDayIgnored(t *testing.T) {
	expiry := date(2024, 5, 20)
	acc := models.Account{Role: models.RoleUser, Status: models.StatusActive, SubscriptionExpiresAt: &expiry}

	lateEvening := time.Date(2024, 5, 19, 23, 59, 0, 0, time.Local)
	assert.Equal(t, WarningActive(1), Evaluate(acc, lateEvening))

	justAfterMidnight := time.Date(2024, 5, 21, 0, 0, 1, 0, time.Local)
	assert.Equal(t, Expired(1), Evaluate(acc, justAfterMidnight))
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "active", Active().String())
	assert.Equal(t, "blocked", Blocked().String())
	assert.Equal(t, "warning_active(2 days remaining)", WarningActive(2).String())
	assert.Equal(t, "expired(9 days overdue)", Expired(9).String())
	assert.Equal(t, "unknown", Kind(0).String())
}
