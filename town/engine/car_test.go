package engine

import (
	"encoding/json"
	"testing"
)

func TestNewCar(t *testing.T) {
	t.Run("known types get their fixed speeds", func(t *testing.T) {
		tests := []struct {
			typ   CarType
			speed int
		}{
			{RegularGreen, 450},
			{RegularBlue, 300},
			{RegularRed, 300},
			{Race, 700},
		}
		for _, tt := range tests {
			car := NewCar(tt.typ)
			if car.Type() != tt.typ {
				t.Errorf("NewCar(%s).Type() = %s", tt.typ, car.Type())
			}
			if car.Speed() != tt.speed {
				t.Errorf("NewCar(%s).Speed() = %d, want %d", tt.typ, car.Speed(), tt.speed)
			}
			if car.Active() {
				t.Errorf("NewCar(%s) starts active", tt.typ)
			}
		}
	})

	t.Run("unknown type falls back to green", func(t *testing.T) {
		car := NewCar(CarType("HOVERCRAFT"))
		if car.Type() != RegularGreen {
			t.Errorf("Type() = %s, want %s", car.Type(), RegularGreen)
		}
		if car.Speed() != 450 {
			t.Errorf("Speed() = %d, want 450", car.Speed())
		}
	})
}

func TestCarSetActive(t *testing.T) {
	car := NewCar(RegularBlue)

	car.SetActive(true)
	if !car.Active() {
		t.Error("expected car to be active")
	}

	car.SetActive(false)
	if car.Active() {
		t.Error("expected car to be parked")
	}
}

func TestCarMarshalJSON(t *testing.T) {
	car := NewCar(Race)
	car.SetActive(true)

	data, err := json.Marshal(car)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got struct {
		Speed  int    `json:"speed"`
		Type   string `json:"type"`
		Active bool   `json:"active"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Speed != 700 || got.Type != "RACE" || !got.Active {
		t.Errorf("unexpected wire shape: %s", data)
	}
}
