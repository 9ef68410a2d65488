package domain

// HookName identifies a lifecycle point in the release sequence.
type HookName string

const (
	// HookInit runs right after the next tag is resolved.
	HookInit HookName = "init"
	// HookBeforeCommit runs after manifests are updated and before committing.
	HookBeforeCommit HookName = "beforeCommit"
	// HookAfterPush runs after every queued ref was pushed, or after tagging in local mode.
	HookAfterPush HookName = "afterPush"
)

// HookNames lists the hooks in execution order.
var HookNames = []HookName{HookInit, HookBeforeCommit, HookAfterPush}

func (h HookName) String() string {
	return string(h)
}

// IsValid returns true if h is one of the known hooks.
func (h HookName) IsValid() bool {
	switch h {
	case HookInit, HookBeforeCommit, HookAfterPush:
		return true
	default:
		return false
	}
}
