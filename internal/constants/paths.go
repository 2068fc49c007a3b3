package constants

// Configuration and artifact path constants.
const (
	// ConfigDirName is the directory name for global and project config.
	ConfigDirName = ".verity"

	// ConfigFileName is the config file name inside ConfigDirName.
	ConfigFileName = "config.yaml"

	// ArtifactDirName is the default directory for run artifacts,
	// relative to the global config directory.
	ArtifactDirName = "artifacts"

	// LogDirName is the directory for rotated log files.
	LogDirName = "logs"

	// LogFileName is the main log file name.
	LogFileName = "verity.log"

	// ArtifactRoutePrefix is the URL path the artifact server mounts the
	// artifact root under. The default artifacts.base_url ends with it.
	ArtifactRoutePrefix = "/artifacts"

	// DefaultRecipePath is where repositories keep their test recipe and
	// where check annotations anchor when no path is configured.
	DefaultRecipePath = ".verity/recipe.yaml"
)
