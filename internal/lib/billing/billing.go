// Package billing содержит вычисления биллингового цикла тарифного плана.
package billing

import (
	"strings"
	"time"
)

// Биллинговые циклы, приходящие от платежного провайдера.
const (
	CycleMonthly = "monthly"
	CycleYearly  = "yearly"
)

// ExpiryDate считает дату окончания плана от момента активации:
// ровно 12 месяцев для годового цикла и 1 месяц для любого другого.
func ExpiryDate(activatedAt time.Time, billingCycle string) time.Time {
	if strings.EqualFold(billingCycle, CycleYearly) {
		return activatedAt.AddDate(0, 12, 0)
	}
	return activatedAt.AddDate(0, 1, 0)
}

// NormalizeCycle приводит цикл к каноническому значению,
// неизвестные значения считаются месячным циклом.
func NormalizeCycle(billingCycle string) string {
	if strings.EqualFold(billingCycle, CycleYearly) {
		return CycleYearly
	}
	return CycleMonthly
}
