package orchestrator

// TagPlaceholder is replaced by the tag name in commit and annotation messages.
const TagPlaceholder = "%@"

// User-facing messages of the release workflow.
const (
	MsgAborted        = "Aborted."
	MsgDirtyTree      = "Your working tree contains modifications that will be added to the release commit"
	MsgMissingBranch  = "Must have a branch checked out to commit to"
	msgSkippedTagging = "Skipped tagging, HEAD already at tag: %s"
	msgLatestVersion  = "Latest version: %s"
	msgCommitted      = "Successfully committed changes '%s' locally."
	msgAboutToTag     = "About to create tag '%s'"
	msgAndPush        = " and push to remote '%s'"
	msgTagCreated     = "Successfully created git tag '%s' locally."
	msgPushed         = "Successfully pushed '%s' to remote '%s'."
)
