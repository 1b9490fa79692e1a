package device

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		dev     CameraDevice
		wantErr error
	}{
		{
			name:    "valid lowercase hex",
			dev:     CameraDevice{VendorID: "046d", ProductID: "085e", Label: "cam"},
			wantErr: nil,
		},
		{
			name:    "valid uppercase hex",
			dev:     CameraDevice{VendorID: "046D", ProductID: "085E", Label: "cam"},
			wantErr: nil,
		},
		{
			name:    "vendor id too short",
			dev:     CameraDevice{VendorID: "46d", ProductID: "085e", Label: "cam"},
			wantErr: ErrInvalidVendorID,
		},
		{
			name:    "vendor id not hex",
			dev:     CameraDevice{VendorID: "zzzz", ProductID: "085e", Label: "cam"},
			wantErr: ErrInvalidVendorID,
		},
		{
			name:    "product id empty",
			dev:     CameraDevice{VendorID: "046d", ProductID: "", Label: "cam"},
			wantErr: ErrInvalidProductID,
		},
		{
			name:    "missing label",
			dev:     CameraDevice{VendorID: "046d", ProductID: "085e"},
			wantErr: ErrInvalidLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dev.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStatus(t *testing.T) {
	if err := ValidateStatus(StatusConnected); err != nil {
		t.Errorf("ValidateStatus(connected) error = %v", err)
	}
	if err := ValidateStatus("bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("ValidateStatus(bogus) error = %v, want ErrInvalidStatus", err)
	}
}
