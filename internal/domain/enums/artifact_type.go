package enums

type ArtifactType string

const (
	ArtifactTypeJoke   ArtifactType = "joke"
	ArtifactTypePrompt ArtifactType = "prompt"
	ArtifactTypeStory  ArtifactType = "story"
)

func (t ArtifactType) Valid() bool {
	switch t {
	case ArtifactTypeJoke, ArtifactTypePrompt, ArtifactTypeStory:
		return true
	default:
		return false
	}
}
