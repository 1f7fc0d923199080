package config

import (
	"regexp"
	"runtime"
	"time"

	"github.com/devstats/gha2db/internal/collection"
)

// Ctx holds every resolved gha2db setting. Treat it as read-only once New
// returns; ExecFatal, ExecQuiet, ExecOutput and TestMode are the only fields
// tests are expected to flip.
type Ctx struct {
	// Debugging and output
	Debug       int  // GHA2DB_DEBUG: 0 off, 1 info, 2 verbose including SQLs
	CmdDebug    int  // GHA2DB_CMDDEBUG: 1 commands, 2 commands and output, 3 full environment
	GitHubDebug int  // GHA2DB_GITHUB_DEBUG: GitHub rate limit diagnostics
	QOut        bool // GHA2DB_QOUT: print every SQL query
	CtxOut      bool // GHA2DB_CTXOUT: print this struct once resolved
	LogTime     bool // disabled by GHA2DB_SKIPTIME
	JSONOut     bool // GHA2DB_JSON
	DBOut       bool // disabled by GHA2DB_NODB
	DryRun      bool // GHA2DB_DRY_RUN

	// Execution mode
	ST    bool // GHA2DB_ST, or GHA2DB_NCPUS=1
	NCPUs int  // GHA2DB_NCPUS, 0 means runtime.NumCPU

	Postgres     Postgres
	CanReconnect bool // false when the caller picked a custom database

	// Files and directories
	DataDir          string // GHA2DB_DATADIR, always ends with "/"
	Project          string
	MetricsYaml      string
	TagsYaml         string
	ColumnsYaml      string
	VarsYaml         string
	VarsFnYaml       string
	SkipDatesYaml    string
	TestsYaml        string
	ProjectsYaml     string
	AffiliationsJSON string
	CompanyAcqYaml   string
	ReposDir         string // GHA2DB_REPOS_DIR, always ends with "/"
	JSONsDir         string // GHA2DB_JSONS_DIR, always ends with "/"
	PidFileRoot      string
	Local            bool
	LocalCmd         bool
	Absolute         bool
	GitHubOAuth      string // token, token file path, or "-" for public access
	CSVFile          string

	// Schema and tooling
	Index bool
	Table bool
	Tools bool
	Mgetc string

	// Time handling
	TmOffset          int
	DefaultStartDate  time.Time
	ForceStartDate    bool
	LastSeries        string
	MaxRunningFlagAge time.Duration

	// Postgres interval literals, passed through verbatim
	ClearDBPeriod        string
	ClearAffsLockPeriod  string
	ClearGiantLockPeriod string
	RecentRange          string
	RecentReposRange     string

	// GitHub API
	MinGHAPIPoints      int
	MaxGHAPIWaitSeconds int
	MaxGHAPIRetry       int
	GHAPIErrorIsFatal   bool
	SkipGHAPI           bool
	SkipAPIEvents       bool
	SkipAPICommits      bool
	SkipAPILicenses     bool
	ForceAPILicenses    bool
	SkipAPILangs        bool
	ForceAPILangs       bool
	AutoFetchCommits    bool
	SkipUpdateEvents    bool

	// Sync pipeline
	SkipGetRepos       bool
	SkipTags           bool
	SkipAnnotations    bool
	SkipColumns        bool
	RunColumns         bool
	SkipVars           bool
	SkipRand           bool
	SkipTSDB           bool
	SkipPDB            bool
	ResetTSDB          bool
	ResetRanges        bool
	Explain            bool
	OldFormat          bool
	Exact              bool
	LogToDB            bool
	AllowBrokenJSON    bool
	WebsiteData        bool
	SkipSharedDB       bool
	SkipPIDFile        bool
	SkipCompanyAcq     bool
	CheckProvisionFlag bool
	CheckRunningFlag   bool
	SetRunningFlag     bool
	ComputeAll         bool
	EnableMetricsDrop  bool
	RefreshCommitRoles bool
	ProjectScale       float64
	RecalcReciprocal   int
	MaxHistograms      int
	HTTPTimeout        int // minutes
	HTTPRetry          int

	// Affiliations import
	CheckImportedSHA     bool
	OnlyCheckImportedSHA bool

	// Repositories and commits
	ProcessRepos             bool
	ProcessCommits           bool
	ExternalInfo             bool
	ProjectsCommits          string
	PropagateOnlyVar         bool
	CommitsFilesStatsEnabled bool
	CommitsLOCStatsEnabled   bool

	// Webhook
	WebHookHost  string
	WebHookPort  string // always starts with ":"
	WebHookRoot  string
	CheckPayload bool
	FullDeploy   bool
	ProjectRoot  string

	// Collections
	Trials           []int
	DeployBranches   []string
	DeployStatuses   []string
	DeployResults    []int
	DeployTypes      []string
	InputDBs         []string
	OutputDB         string
	ProjectsOverride map[string]bool
	ExcludeRepos     collection.DenyList
	ExcludeVars      collection.DenyList
	OnlyVars         collection.AllowList
	OnlyMetrics      collection.AllowList
	SkipMetrics      collection.DenyList
	ComputePeriods   map[string]collection.PeriodModes
	MaxRunDuration   map[string]collection.RunLimit

	// Actor filtering
	ActorsFilter bool
	ActorsAllow  Matcher
	ActorsForbid Matcher

	// Taken from Overrides only
	SharedDB        string
	ProjectMainRepo string

	DefaultHostname          string
	RandComputeAtThisDate    bool
	AllowRandTagsColsCompute bool

	// Test-only toggles
	ExecFatal  bool
	ExecQuiet  bool
	ExecOutput bool
	TestMode   bool
}

// CPUs returns the worker count to use.
func (c *Ctx) CPUs() int {
	if c.NCPUs > 0 {
		return c.NCPUs
	}
	return runtime.NumCPU()
}

// DataPath locates a data file such as "projects.yaml" or a metrics SQL.
func (c *Ctx) DataPath(name string) string {
	switch {
	case c.Local:
		return "./" + name
	case c.Absolute:
		return name
	default:
		return c.DataDir + name
	}
}

// ActorAllowed applies GHA2DB_ACTORS_ALLOW and GHA2DB_ACTORS_FORBID when
// actor filtering is on.
func (c *Ctx) ActorAllowed(login string) bool {
	if !c.ActorsFilter {
		return true
	}
	if c.ActorsAllow.IsSet() && !c.ActorsAllow.MatchString(login) {
		return false
	}
	if c.ActorsForbid.IsSet() && c.ActorsForbid.MatchString(login) {
		return false
	}
	return true
}

// ProjectEnabled applies GHA2DB_PROJECTS_OVERRIDE on top of a project's own
// disabled flag.
func (c *Ctx) ProjectEnabled(name string, disabled bool) bool {
	if forced, ok := c.ProjectsOverride[name]; ok {
		return forced
	}
	return !disabled
}

// Matcher is an optional compiled regular expression. The zero value
// matches nothing and reports IsSet false.
type Matcher struct {
	re *regexp.Regexp
}

// IsSet reports whether a pattern was configured.
func (m Matcher) IsSet() bool { return m.re != nil }

// MatchString reports whether s matches; always false when unset.
func (m Matcher) MatchString(s string) bool {
	return m.re != nil && m.re.MatchString(s)
}

func (m Matcher) String() string {
	if m.re == nil {
		return ""
	}
	return m.re.String()
}

// MarshalYAML renders the source pattern.
func (m Matcher) MarshalYAML() (any, error) { return m.String(), nil }

// Secret is a string that is masked when printed or dumped.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "********"
}

// MarshalYAML renders the masked value.
func (s Secret) MarshalYAML() (any, error) { return s.String(), nil }
