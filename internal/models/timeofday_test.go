package models_test

import (
	"testing"

	"github.com/Spok95/tutoring-admin/internal/models"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    models.TimeOfDay
		wantErr bool
	}{
		{in: "09:00", want: models.TimeOfDay{Hour: 9}},
		{in: "18:30", want: models.TimeOfDay{Hour: 18, Minute: 30}},
		{in: "09:00:00", want: models.TimeOfDay{Hour: 9}}, // формат колонки TIME
		{in: "23:59:59", want: models.TimeOfDay{Hour: 23, Minute: 59}},
		{in: "25:00", wantErr: true},
		{in: "9 утра", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := models.ParseTimeOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: ожидали ошибку", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: ожидали %v, получили %v", tc.in, tc.want, got)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	if s := (models.TimeOfDay{Hour: 9, Minute: 5}).String(); s != "09:05:00" {
		t.Fatalf("ожидали 09:05:00, получили %s", s)
	}
}
