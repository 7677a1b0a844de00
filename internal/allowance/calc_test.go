package allowance_test

import (
	"testing"

	"github.com/Spok95/tutoring-admin/internal/allowance"
	"github.com/Spok95/tutoring-admin/internal/models"
)

func TestCalc_PerClass(t *testing.T) {
	amount, fallback := allowance.Calc(allowance.Inputs{
		RateType:    models.RatePerClass,
		TeacherRate: 300,
		Capacity:    8, // вместимость на ставку за класс не влияет
	})
	if fallback || amount != 300 {
		t.Fatalf("ожидали 300 без fallback, получили %v (fallback=%v)", amount, fallback)
	}
}

func TestCalc_PerStudent(t *testing.T) {
	amount, fallback := allowance.Calc(allowance.Inputs{
		RateType:    models.RatePerStudent,
		TeacherRate: 50,
		Capacity:    4,
	})
	if fallback || amount != 200 {
		t.Fatalf("ожидали 50×4=200, получили %v (fallback=%v)", amount, fallback)
	}

	// Нулевая вместимость трактуется как 1.
	amount, fallback = allowance.Calc(allowance.Inputs{
		RateType:    models.RatePerStudent,
		TeacherRate: 50,
		Capacity:    0,
	})
	if fallback || amount != 50 {
		t.Fatalf("ожидали 50 при capacity=0, получили %v (fallback=%v)", amount, fallback)
	}
}

func TestCalc_PerSessionPercentage(t *testing.T) {
	// 400/мес на 4 занятия = 100 за занятие, комиссия 10% = 10.
	amount, fallback := allowance.Calc(allowance.Inputs{
		RateType:        models.RatePerSession,
		CommissionType:  models.CommissionPercentage,
		CommissionValue: 10,
		Billing: &models.CourseBilling{
			Type:             models.BillingPerMonth,
			PricePerMonth:    400,
			SessionsPerMonth: 4,
		},
	})
	if fallback || amount != 10 {
		t.Fatalf("ожидали 10, получили %v (fallback=%v)", amount, fallback)
	}
}

func TestCalc_PerSessionFixed(t *testing.T) {
	amount, fallback := allowance.Calc(allowance.Inputs{
		RateType:        models.RatePerSession,
		CommissionType:  models.CommissionFixed,
		CommissionValue: 75,
		Billing: &models.CourseBilling{
			Type:            models.BillingPerSession,
			PricePerSession: 1000, // на фиксированную комиссию не влияет
		},
	})
	if fallback || amount != 75 {
		t.Fatalf("ожидали 75, получили %v (fallback=%v)", amount, fallback)
	}
}

func TestCalc_PerSessionPerMinute(t *testing.T) {
	amount, fallback := allowance.Calc(allowance.Inputs{
		RateType:        models.RatePerSession,
		CommissionType:  models.CommissionPercentage,
		CommissionValue: 50,
		DurationMinutes: 60,
		Billing: &models.CourseBilling{
			Type:           models.BillingPerMinute,
			PricePerMinute: 2,
		},
	})
	if fallback || amount != 60 {
		t.Fatalf("ожидали 2×60×50%%=60, получили %v (fallback=%v)", amount, fallback)
	}
}

func TestCalc_SessionsPerMonthZero(t *testing.T) {
	// Нулевое sessions_per_month — унаследованный дефолт «1».
	amount, fallback := allowance.Calc(allowance.Inputs{
		RateType:        models.RatePerSession,
		CommissionType:  models.CommissionPercentage,
		CommissionValue: 10,
		Billing: &models.CourseBilling{
			Type:          models.BillingPerMonth,
			PricePerMonth: 400,
		},
	})
	if fallback || amount != 40 {
		t.Fatalf("ожидали 400/1×10%%=40, получили %v (fallback=%v)", amount, fallback)
	}
}

func TestCalc_MissingBillingFallsBackToZero(t *testing.T) {
	amount, fallback := allowance.Calc(allowance.Inputs{
		RateType:        models.RatePerSession,
		CommissionType:  models.CommissionPercentage,
		CommissionValue: 10,
		Billing:         nil,
	})
	if !fallback || amount != 0 {
		t.Fatalf("ожидали (0, fallback), получили %v (fallback=%v)", amount, fallback)
	}
}

func TestCalc_NegativeClampedToZero(t *testing.T) {
	amount, fallback := allowance.Calc(allowance.Inputs{
		RateType:    models.RatePerClass,
		TeacherRate: -100,
	})
	if fallback || amount != 0 {
		t.Fatalf("ожидали 0 без fallback, получили %v (fallback=%v)", amount, fallback)
	}
}

func TestCalc_UnknownRateType(t *testing.T) {
	amount, fallback := allowance.Calc(allowance.Inputs{RateType: models.RateType("hourly")})
	if !fallback || amount != 0 {
		t.Fatalf("ожидали (0, fallback), получили %v (fallback=%v)", amount, fallback)
	}
}
