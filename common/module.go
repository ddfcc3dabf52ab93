package common

type Module string

const (
	ModuleStories Module = "stories"
)

func (m Module) String() string {
	return string(m)
}
