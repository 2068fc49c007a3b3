// Package errors provides centralized error handling for VERITY.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error types can be checked
// using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrSynthesisFailed indicates the AI could not produce a valid action
	// plan. This is always recovered locally via the heuristic fallback plan
	// and never surfaced to the user as a failure.
	ErrSynthesisFailed = errors.New("action plan synthesis failed")

	// ErrPlanInvalid indicates an AI-produced action plan did not validate
	// against the plan schema.
	ErrPlanInvalid = errors.New("action plan failed schema validation")

	// ErrUnknownAction indicates an action plan contains an unrecognized
	// action type.
	ErrUnknownAction = errors.New("unknown action type")

	// ErrActionTimeout indicates a browser action exceeded its timeout.
	// This aborts the current scenario only, never the whole run.
	ErrActionTimeout = errors.New("action timeout exceeded")

	// ErrSessionCrashed indicates the browser session died mid-scenario.
	ErrSessionCrashed = errors.New("browser session crashed")

	// ErrSessionUnavailable indicates a browser session could not be created
	// or recovered.
	ErrSessionUnavailable = errors.New("browser session unavailable")

	// ErrClassificationFailed indicates the AI verification call errored.
	// Classification fails closed: the scenario is recorded as FAIL.
	ErrClassificationFailed = errors.New("result verification failed")

	// ErrInvalidTransition indicates an attempt to make an invalid check-run
	// state transition.
	ErrInvalidTransition = errors.New("invalid check run transition")

	// ErrCheckRunCompleted indicates a transition was attempted on a check
	// run that already reached its terminal state.
	ErrCheckRunCompleted = errors.New("check run already completed")

	// ErrCheckRunOperation indicates an external check-run API call failed.
	ErrCheckRunOperation = errors.New("check run operation failed")

	// ErrCommentFailed indicates posting the run comment failed.
	ErrCommentFailed = errors.New("comment post failed")

	// ErrAutomationDisabled indicates orchestration was requested while the
	// automation flag is off. No side effects are produced in this case.
	ErrAutomationDisabled = errors.New("automation is disabled")

	// ErrEmptyRecipe indicates the test recipe contains no scenarios.
	ErrEmptyRecipe = errors.New("test recipe is empty")

	// ErrNoBaseURL indicates no target base URL is configured.
	ErrNoBaseURL = errors.New("no target base URL configured")

	// ErrLabelNotAllowed indicates the trigger labels did not match the
	// configured allow-list.
	ErrLabelNotAllowed = errors.New("trigger label not in allow-list")

	// ErrQANotNeeded indicates the upstream analysis did not flag the
	// change as needing an automated QA run.
	ErrQANotNeeded = errors.New("qa not requested for this change")

	// ErrRecipeInvalid indicates a recipe file failed validation.
	ErrRecipeInvalid = errors.New("invalid test recipe")

	// ErrAIInvocation indicates the AI CLI failed to execute or returned a
	// non-zero exit code.
	ErrAIInvocation = errors.New("ai invocation failed")

	// ErrAIEmptyResponse indicates the AI returned an empty response.
	ErrAIEmptyResponse = errors.New("ai returned empty response")

	// ErrAIInvalidFormat indicates the AI response was not in the expected format.
	ErrAIInvalidFormat = errors.New("ai response not in expected format")

	// ErrMaxRetriesExceeded indicates the maximum AI retry attempts have been
	// reached.
	ErrMaxRetriesExceeded = errors.New("maximum retry attempts exceeded")

	// ErrArtifactNotFound indicates a requested artifact file was not found.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrArtifactStore indicates an artifact could not be persisted.
	ErrArtifactStore = errors.New("artifact store operation failed")

	// ErrEncoderUnavailable indicates no video encoder is available; the run
	// proceeds with screencast frames only and no full video.
	ErrEncoderUnavailable = errors.New("video encoder unavailable")

	// ErrRecordingInactive indicates a recording operation was attempted
	// while no screencast is active.
	ErrRecordingInactive = errors.New("recording not active")

	// ErrConfigNil indicates a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidAutomation indicates an invalid automation configuration value.
	ErrConfigInvalidAutomation = errors.New("invalid automation configuration")

	// ErrConfigInvalidBrowser indicates an invalid browser configuration value.
	ErrConfigInvalidBrowser = errors.New("invalid browser configuration")

	// ErrConfigInvalidAI indicates an invalid AI configuration value.
	ErrConfigInvalidAI = errors.New("invalid AI configuration")

	// ErrConfigInvalidArtifact indicates an invalid artifact configuration value.
	ErrConfigInvalidArtifact = errors.New("invalid artifact configuration")

	// ErrConfigInvalidGitHub indicates an invalid GitHub configuration value.
	ErrConfigInvalidGitHub = errors.New("invalid GitHub configuration")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrDuplicateDelivery indicates a webhook delivery was already seen
	// inside the dedupe window.
	ErrDuplicateDelivery = errors.New("duplicate delivery")

	// ErrGHOperation indicates a gh CLI invocation failed.
	ErrGHOperation = errors.New("gh operation failed")
)
