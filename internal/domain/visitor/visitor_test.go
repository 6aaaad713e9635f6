package visitor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDesignationRankOrdering(t *testing.T) {
	require.Less(t, DesignationVisitor.Rank(), DesignationEmail.Rank())
	require.Less(t, DesignationEmail.Rank(), DesignationRegistered.Rank())
	require.Less(t, DesignationRegistered.Rank(), DesignationSubscriber.Rank())
	require.Equal(t, 0, Designation("lead").Rank())
}

func TestDesignationEscalate(t *testing.T) {
	tests := []struct {
		name     string
		current  Designation
		next     Designation
		expected Designation
	}{
		{"visitor to email", DesignationVisitor, DesignationEmail, DesignationEmail},
		{"visitor straight to subscriber", DesignationVisitor, DesignationSubscriber, DesignationSubscriber},
		{"email to registered", DesignationEmail, DesignationRegistered, DesignationRegistered},
		{"subscriber downgrade to email is ignored", DesignationSubscriber, DesignationEmail, DesignationSubscriber},
		{"registered downgrade to visitor is ignored", DesignationRegistered, DesignationVisitor, DesignationRegistered},
		{"same tier is a no-op", DesignationEmail, DesignationEmail, DesignationEmail},
		{"unknown tier never displaces a real one", DesignationEmail, Designation("vip"), DesignationEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.current.Escalate(tt.next))
		})
	}
}

func TestDesignationValid(t *testing.T) {
	require.True(t, DesignationVisitor.Valid())
	require.True(t, DesignationSubscriber.Valid())
	require.False(t, Designation("").Valid())
	require.False(t, Designation("admin").Valid())
}
