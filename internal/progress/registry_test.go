package progress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryForCurrentPlatformListsAssignFirst(t *testing.T) {
	registry := RegistryFor(PlatformVersion{Major: 4, Minor: 1})

	names := registry.Names()
	require.Equal(t, "assign", names[0])
	require.Equal(t, "assignment", names[1])
	require.Equal(t, 22, registry.Len())

	assign, ok := registry.Get("assign")
	require.True(t, ok)
	require.True(t, assign.ShowSubmittedFirst)

	assignment, _ := registry.Get("assignment")
	require.False(t, assignment.ShowSubmittedFirst)
}

func TestRegistryForLegacyPlatformUsesAssignment(t *testing.T) {
	registry := RegistryFor(PlatformVersion{Major: 2, Minor: 2})

	_, ok := registry.Get("assign")
	require.False(t, ok)

	assignment, ok := registry.Get("assignment")
	require.True(t, ok)
	require.True(t, assignment.ShowSubmittedFirst)
	require.Equal(t, "timedue", assignment.DeadlineField)
}

func TestRegistryEveryDefaultActionResolves(t *testing.T) {
	registry := RegistryFor(PlatformVersion{Major: 4})
	for _, name := range registry.Names() {
		descriptor, _ := registry.Get(name)
		action, ok := descriptor.Action(descriptor.DefaultAction)
		require.True(t, ok, name)
		if action.Kind != KindViewed {
			require.NoError(t, action.Query.Validate(), name)
		}
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(viewedOnly("page"), viewedOnly("page"))
	require.True(t, IsConfigurationError(err))
}

func TestNewRegistryRejectsMismatchedPassedKind(t *testing.T) {
	descriptor := Descriptor{
		Name:          "custom",
		Actions:       map[string]Action{ActionPassed: exists("SELECT id FROM custom WHERE id = @eventid")},
		DefaultAction: ActionPassed,
	}
	_, err := NewRegistry(descriptor)
	require.True(t, IsConfigurationError(err))
}

func TestNewRegistryRejectsMissingDefault(t *testing.T) {
	descriptor := Descriptor{
		Name:          "custom",
		Actions:       map[string]Action{"posted_to": exists("SELECT id FROM custom WHERE id = @eventid")},
		DefaultAction: "answered",
	}
	_, err := NewRegistry(descriptor)
	require.Error(t, err)
}

func TestDescriptorResolveActionFallsBackToDefault(t *testing.T) {
	quiz, _ := RegistryFor(PlatformVersion{Major: 4}).Get("quiz")

	require.Equal(t, "finished", quiz.ResolveAction(""))
	require.Equal(t, "finished", quiz.ResolveAction("answered"))
	require.Equal(t, ActionPassedBy, quiz.ResolveAction("passedby"))
	require.Equal(t, ActionActivityCompletion, quiz.ResolveAction(ActionActivityCompletion))
}

func TestRegistryActionChoices(t *testing.T) {
	registry := RegistryFor(PlatformVersion{Major: 4})

	withoutGrade := registry.ActionChoices("quiz", false, 0)
	require.Equal(t, []string{"attempted", "finished", "graded", "submitted"}, withoutGrade)

	withGrade := registry.ActionChoices("quiz", true, 5)
	require.Equal(t, []string{"attempted", "finished", "graded", "passed", "passedby", "submitted", ActionActivityCompletion}, withGrade)

	require.Nil(t, registry.ActionChoices("unknown", true, 1))
}

func TestAlternateLinkURL(t *testing.T) {
	quiz, _ := RegistryFor(PlatformVersion{Major: 4}).Get("quiz")
	require.Equal(t, "/mod/quiz/report.php?id=31", quiz.AlternateLink.URL(31))
}

func TestParsePlatformVersion(t *testing.T) {
	version, err := ParsePlatformVersion("3.11.2")
	require.NoError(t, err)
	require.Equal(t, PlatformVersion{Major: 3, Minor: 11}, version)
	require.True(t, version.AtLeast(PlatformVersion{Major: 2, Minor: 3}))
	require.Equal(t, "3.11", version.String())

	_, err = ParsePlatformVersion("latest")
	require.Error(t, err)
}
