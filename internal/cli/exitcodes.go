package cli

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	// Use for: Normal, successful command execution.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: Store errors, a daemon commit failure, or any error that
	// doesn't fit the specific categories below.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing required flags, conflicting placement flags on
	// task move, or when the user needs to provide different arguments.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Use for: A task, column, or project whose ID prefix or title
	// doesn't resolve, or an ambiguous prefix matching several records.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed stored data.
	// Use for: Chain violations surfaced by doctor, or records that
	// cannot be loaded into the working copy.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: Empty titles, malformed hex colors, unparseable due
	// dates, or any case where input fails validation rules.
	ExitValidation = 5
)
