package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObjectType(t *testing.T) {
	tests := []struct {
		in      string
		want    ObjectType
		wantErr error
	}{
		{in: "NONE", want: ObjectTypeNone},
		{in: "card", want: ObjectTypeCard},
		{in: " Box ", want: ObjectTypeBox},
		{in: "", wantErr: ErrInvalidObjectType},
		{in: "circle", wantErr: ErrInvalidObjectType},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseObjectType(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlacedObjectValidate(t *testing.T) {
	tests := []struct {
		name    string
		obj     PlacedObject
		wantErr error
	}{
		{
			name: "empty placeholder",
			obj:  PlacedObject{ID: "o1", ObjectType: ObjectTypeNone},
		},
		{
			name: "card with ref",
			obj:  PlacedObject{ID: "o1", ObjectType: ObjectTypeCard, DataRef: "c1"},
		},
		{
			name:    "missing id",
			obj:     PlacedObject{ObjectType: ObjectTypeNone},
			wantErr: ErrInvalidID,
		},
		{
			name:    "none with ref",
			obj:     PlacedObject{ID: "o1", ObjectType: ObjectTypeNone, DataRef: "c1"},
			wantErr: ErrInvalidData,
		},
		{
			name:    "box without ref",
			obj:     PlacedObject{ID: "o1", ObjectType: ObjectTypeBox},
			wantErr: ErrInvalidData,
		},
		{
			name:    "unknown type",
			obj:     PlacedObject{ID: "o1", ObjectType: "CIRCLE", DataRef: "x"},
			wantErr: ErrInvalidObjectType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.obj.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPlacedObjectCheckType(t *testing.T) {
	tests := []struct {
		name    string
		obj     PlacedObject
		wantErr error
	}{
		{name: "card without ref", obj: PlacedObject{ID: "o1", ObjectType: ObjectTypeCard}},
		{name: "box without ref", obj: PlacedObject{ID: "o1", ObjectType: ObjectTypeBox}},
		{name: "none with ref", obj: PlacedObject{ID: "o1", ObjectType: ObjectTypeNone, DataRef: "c"}},
		{name: "missing id", obj: PlacedObject{ObjectType: ObjectTypeNone}, wantErr: ErrInvalidID},
		{name: "unknown type", obj: PlacedObject{ID: "o1", ObjectType: "CIRCLE"}, wantErr: ErrInvalidObjectType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.obj.CheckType()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
