// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

package validation

import (
	"strings"
	"testing"
)

type performanceRequest struct {
	DistrictCode  string `validate:"required,district_code"`
	FinancialYear string `validate:"omitempty,financial_year"`
	Limit         int    `validate:"min=1,max=100"`
}

func TestValidateStructPasses(t *testing.T) {
	req := performanceRequest{DistrictCode: "UP01", FinancialYear: "2025-26", Limit: 12}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}
}

func TestDistrictCodeValidation(t *testing.T) {
	valid := []string{"UP01", "MH3201", "tn05", "BRD1234"}
	invalid := []string{"", "U1", "UP", "1234", "UPXX", "UP012345", "UP-01"}

	for _, code := range valid {
		req := performanceRequest{DistrictCode: code, Limit: 1}
		if err := ValidateStruct(&req); err != nil {
			t.Errorf("code %q should be valid, got %v", code, err)
		}
	}
	for _, code := range invalid {
		req := performanceRequest{DistrictCode: code, Limit: 1}
		if err := ValidateStruct(&req); err == nil {
			t.Errorf("code %q should be invalid", code)
		}
	}
}

func TestFinancialYearValidation(t *testing.T) {
	req := performanceRequest{DistrictCode: "UP01", FinancialYear: "2025-2026", Limit: 1}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected financial year validation failure")
	}
	if !strings.Contains(err.Error(), "2025-26") {
		t.Errorf("expected example in error message, got %q", err.Error())
	}
}

func TestValidationErrorToAPIError(t *testing.T) {
	req := performanceRequest{DistrictCode: "", Limit: 0}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if len(err.Errors()) != 2 {
		t.Errorf("expected 2 field errors, got %d", len(err.Errors()))
	}
	if apiErr.Details == nil {
		t.Error("expected details for multiple errors")
	}
}

func TestSingleErrorDetails(t *testing.T) {
	req := performanceRequest{DistrictCode: "UP01", Limit: 500}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected limit validation failure")
	}

	apiErr := err.ToAPIError()
	if apiErr.Details["field"] != "Limit" {
		t.Errorf("details.field = %v, want Limit", apiErr.Details["field"])
	}
	if !strings.Contains(apiErr.Message, "at most 100") {
		t.Errorf("message = %q, want max message", apiErr.Message)
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator should return the same instance")
	}
}
