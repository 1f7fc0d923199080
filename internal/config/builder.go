package config

import (
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/devstats/gha2db/internal/collection"
	"github.com/devstats/gha2db/internal/convert"
	"github.com/devstats/gha2db/internal/env"
	"github.com/devstats/gha2db/internal/fatal"
)

const (
	DefaultDataDir  = "/etc/gha2db/"
	DefaultHostname = "devstats.cncf.io"
)

var (
	defaultStartDate = time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC)
	defaultTrials    = []int{10, 30, 60, 120, 300, 600, 1200, 3600}
)

// New resolves a Ctx from the environment. It does not return on error: the
// error is passed to the configured fatal.Handler (fatal.Default when unset).
func New(opts ...Option) *Ctx {
	o := options{
		fs:              afero.NewOsFs(),
		oauthCandidates: defaultOAuthCandidates,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fatal == nil {
		o.fatal = fatal.Default()
	}

	c, err := resolve(o)
	o.fatal.Check(err)
	return c
}

// builder carries the first resolution error; once set, further reads
// return their defaults and resolve discards the partial Ctx.
type builder struct {
	env env.Reader
	err error
}

func (b *builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *builder) flag(name string) bool { return b.env.Present(name) }

func (b *builder) str(name, def string) string { return b.env.GetOrDefault(name, def) }

type guard func(int) bool

func nonNegative(v int) bool { return v >= 0 }
func positive(v int) bool    { return v > 0 }
func nonZero(v int) bool     { return v != 0 }

// number parses name as an int. Values rejected by accept keep def.
func (b *builder) number(name string, def int, accept guard) int {
	raw, ok := b.env.Lookup(name)
	if !ok {
		return def
	}
	v, err := convert.Int(name, raw)
	if err != nil {
		b.fail(err)
		return def
	}
	if accept != nil && !accept(v) {
		return def
	}
	return v
}

func (b *builder) float(name string, def float64) float64 {
	raw, ok := b.env.Lookup(name)
	if !ok {
		return def
	}
	v, err := convert.Float(name, raw)
	if err != nil {
		b.fail(err)
		return def
	}
	return v
}

func (b *builder) duration(name string, def time.Duration) time.Duration {
	raw, ok := b.env.Lookup(name)
	if !ok {
		return def
	}
	v, err := convert.Duration(name, raw)
	if err != nil {
		b.fail(err)
		return def
	}
	return v
}

func (b *builder) date(name string, def time.Time) time.Time {
	raw, ok := b.env.Lookup(name)
	if !ok {
		return def
	}
	v, err := convert.Time(name, raw)
	if err != nil {
		b.fail(err)
		return def
	}
	return v
}

func (b *builder) ints(name string, def []int) []int {
	v, err := collection.IntList(name, b.env.Get(name), def)
	if err != nil {
		b.fail(err)
		return nil
	}
	return v
}

func (b *builder) matcher(name string) Matcher {
	raw, ok := b.env.Lookup(name)
	if !ok {
		return Matcher{}
	}
	re, err := convert.Regexp(name, raw)
	if err != nil {
		b.fail(err)
		return Matcher{}
	}
	return Matcher{re: re}
}

func resolve(o options) (*Ctx, error) {
	b := &builder{env: env.NewReader(o.source)}
	c := &Ctx{
		DefaultHostname:       DefaultHostname,
		RandComputeAtThisDate: true,
		ExecFatal:             true,
		CanReconnect:          true,
		TestMode:              o.testMode,
	}

	b.independent(c, o.overrides)
	if b.err != nil {
		return nil, b.err
	}

	pg, err := resolvePostgres(b.env)
	if err != nil {
		return nil, err
	}
	c.Postgres = pg
	if o.database != "" {
		c.Postgres.DB = o.database
		c.CanReconnect = false
	}

	if err := b.derived(c, o); err != nil {
		return nil, err
	}
	return c, nil
}

// independent is pass one: every setting read from its own variable.
func (b *builder) independent(c *Ctx, ov Overrides) {
	c.Debug = b.number("GHA2DB_DEBUG", 0, nonZero)
	c.CmdDebug = b.number("GHA2DB_CMDDEBUG", 0, nonZero)
	c.GitHubDebug = b.number("GHA2DB_GITHUB_DEBUG", 0, nonZero)
	c.QOut = b.flag("GHA2DB_QOUT")
	c.CtxOut = b.flag("GHA2DB_CTXOUT")
	c.LogTime = !b.flag("GHA2DB_SKIPTIME")
	c.JSONOut = b.flag("GHA2DB_JSON")
	c.DBOut = !b.flag("GHA2DB_NODB")
	c.DryRun = b.flag("GHA2DB_DRY_RUN")

	b.cpus(c)

	c.Index = b.flag("GHA2DB_INDEX")
	c.Table = !b.flag("GHA2DB_SKIPTABLE")
	c.Tools = !b.flag("GHA2DB_SKIPTOOLS")
	if mgetc := []rune(b.env.Get("GHA2DB_MGETC")); len(mgetc) > 0 {
		c.Mgetc = string(mgetc[:1])
	}

	c.TmOffset = b.number("GHA2DB_TMOFFSET", 0, nil)
	startDate := defaultStartDate
	if ov.StartDate != nil {
		startDate = ov.StartDate.UTC()
	}
	c.DefaultStartDate = b.date("GHA2DB_STARTDT", startDate)
	c.ForceStartDate = b.flag("GHA2DB_STARTDT_FORCE")
	c.LastSeries = b.str("GHA2DB_LASTSERIES", "events_h")
	c.MaxRunningFlagAge = b.duration("GHA2DB_MAX_RUNNING_FLAG_AGE", 9*time.Hour)

	c.ClearDBPeriod = b.str("GHA2DB_MAXLOGAGE", "1 week")
	c.ClearAffsLockPeriod = b.str("GHA2DB_MAX_AFFS_LOCK_AGE", "16 hours")
	c.ClearGiantLockPeriod = b.str("GHA2DB_MAX_GIANT_LOCK_AGE", "40 hours")
	c.RecentRange = b.str("GHA2DB_RECENT_RANGE", "2 hours")
	c.RecentReposRange = b.str("GHA2DB_RECENT_REPOS_RANGE", "1 day")

	c.MinGHAPIPoints = b.number("GHA2DB_MIN_GHAPI_POINTS", 1, nonNegative)
	c.MaxGHAPIWaitSeconds = b.number("GHA2DB_MAX_GHAPI_WAIT", 10, nonNegative)
	c.MaxGHAPIRetry = b.number("GHA2DB_MAX_GHAPI_RETRY", 6, positive)
	c.GHAPIErrorIsFatal = b.flag("GHA2DB_GHAPI_ERROR_FATAL")
	c.SkipGHAPI = b.flag("GHA2DB_GHAPISKIP")
	c.SkipAPIEvents = b.flag("GHA2DB_GHAPISKIPEVENTS")
	c.SkipAPICommits = b.flag("GHA2DB_GHAPISKIPCOMMITS")
	c.SkipAPILicenses = b.flag("GHA2DB_GHAPISKIPLICENSES")
	c.ForceAPILicenses = b.flag("GHA2DB_GHAPIFORCELICENSES")
	c.SkipAPILangs = b.flag("GHA2DB_GHAPISKIPLANGS")
	c.ForceAPILangs = b.flag("GHA2DB_GHAPIFORCELANGS")
	c.AutoFetchCommits = !b.flag("GHA2DB_NO_AUTOFETCHCOMMITS")
	c.SkipUpdateEvents = b.flag("GHA2DB_SKIP_UPDATE_EVENTS")

	c.SkipGetRepos = b.flag("GHA2DB_GETREPOSSKIP")
	c.SkipTags = b.flag("GHA2DB_SKIP_TAGS")
	c.SkipAnnotations = b.flag("GHA2DB_SKIP_ANNOTATIONS")
	c.SkipColumns = b.flag("GHA2DB_SKIP_COLUMNS")
	c.RunColumns = b.flag("GHA2DB_RUN_COLUMNS")
	c.SkipVars = b.flag("GHA2DB_SKIP_VARS")
	c.SkipRand = b.flag("GHA2DB_SKIP_RAND")
	c.SkipTSDB = b.flag("GHA2DB_SKIPTSDB")
	c.SkipPDB = b.flag("GHA2DB_SKIPPDB")
	c.ResetTSDB = b.flag("GHA2DB_RESETTSDB")
	c.ResetRanges = b.flag("GHA2DB_RESETRANGES")
	c.Explain = b.flag("GHA2DB_EXPLAIN")
	c.OldFormat = b.flag("GHA2DB_OLDFMT")
	c.Exact = b.flag("GHA2DB_EXACT")
	c.LogToDB = !b.flag("GHA2DB_SKIPLOG")
	c.AllowBrokenJSON = b.flag("GHA2DB_ALLOW_BROKEN_JSON")
	c.WebsiteData = b.flag("GHA2DB_WEBSITEDATA")
	c.SkipSharedDB = b.flag("GHA2DB_SKIP_SHAREDDB")
	c.SkipPIDFile = b.flag("GHA2DB_SKIP_PIDFILE")
	c.SkipCompanyAcq = b.flag("GHA2DB_SKIP_COMPANY_ACQ")
	c.CheckProvisionFlag = b.flag("GHA2DB_CHECK_PROVISION_FLAG")
	c.CheckRunningFlag = b.flag("GHA2DB_CHECK_RUNNING_FLAG")
	c.SetRunningFlag = b.flag("GHA2DB_SET_RUNNING_FLAG")
	c.CheckImportedSHA = b.flag("GHA2DB_CHECK_IMPORTED_SHA")
	c.OnlyCheckImportedSHA = b.flag("GHA2DB_ONLY_CHECK_IMPORTED_SHA")
	c.ComputeAll = b.flag("GHA2DB_COMPUTE_ALL")
	c.EnableMetricsDrop = b.flag("GHA2DB_ENABLE_METRICS_DROP")
	c.RefreshCommitRoles = b.flag("GHA2DB_REFRESH_COMMIT_ROLES")
	scale := 1.0
	if ov.ProjectScale != nil {
		scale = *ov.ProjectScale
	}
	c.ProjectScale = b.float("GHA2DB_PROJECT_SCALE", scale)
	c.RecalcReciprocal = b.number("GHA2DB_RECALC_RECIPROCAL", 24, positive)
	c.MaxHistograms = b.number("GHA2DB_MAX_HIST", 0, positive)
	c.HTTPTimeout = b.number("GHA2DB_HTTP_TIMEOUT", 3, nil)
	c.HTTPRetry = b.number("GHA2DB_HTTP_RETRY", 5, nil)
	c.CSVFile = b.env.Get("GHA2DB_CSVOUT")

	c.ProcessRepos = b.flag("GHA2DB_PROCESS_REPOS")
	c.ProcessCommits = b.flag("GHA2DB_PROCESS_COMMITS")
	c.ExternalInfo = b.flag("GHA2DB_EXTERNAL_INFO")
	c.PropagateOnlyVar = b.flag("GHA2DB_PROPAGATE_ONLY_VAR")
	c.CommitsFilesStatsEnabled = !b.flag("GHA2DB_SKIP_COMMITS_FILES")
	c.CommitsLOCStatsEnabled = !b.flag("GHA2DB_SKIP_COMMITS_LOC")

	c.WebHookHost = b.str("GHA2DB_WHHOST", "127.0.0.1")
	c.WebHookPort = b.str("GHA2DB_WHPORT", ":1982")
	c.WebHookRoot = b.str("GHA2DB_WHROOT", "/hook")
	c.CheckPayload = !b.flag("GHA2DB_SKIP_VERIFY_PAYLOAD")
	c.FullDeploy = !b.flag("GHA2DB_SKIP_FULL_DEPLOY")
	c.ProjectRoot = b.env.Get("GHA2DB_PROJECT_ROOT")

	c.Trials = b.ints("GHA2DB_TRIALS", defaultTrials)
	c.DeployBranches = collection.List(b.env.Get("GHA2DB_DEPLOY_BRANCHES"), []string{"master"})
	c.DeployStatuses = collection.List(b.env.Get("GHA2DB_DEPLOY_STATUSES"), []string{"Passed", "Fixed"})
	c.DeployTypes = collection.List(b.env.Get("GHA2DB_DEPLOY_TYPES"), []string{"push"})
	c.DeployResults = b.ints("GHA2DB_DEPLOY_RESULTS", []int{0})
	c.InputDBs = collection.List(b.env.Get("GHA2DB_INPUT_DBS"), nil)
	c.OutputDB = b.env.Get("GHA2DB_OUTPUT_DB")
	c.ProjectsOverride = collection.Overrides(b.env.Get("GHA2DB_PROJECTS_OVERRIDE"))
	c.ExcludeRepos = collection.NewDenyList(b.env.Get("GHA2DB_EXCLUDE_REPOS"))
	c.ExcludeVars = collection.NewDenyList(b.env.Get("GHA2DB_EXCLUDE_VARS"))
	c.OnlyVars = collection.NewAllowList(b.env.Get("GHA2DB_ONLY_VARS"))
	c.OnlyMetrics = collection.NewAllowList(b.env.Get("GHA2DB_ONLY_METRICS"))
	c.SkipMetrics = collection.NewDenyList(b.env.Get("GHA2DB_SKIP_METRICS"))
	c.ComputePeriods = collection.ComputePeriods(b.env.Get("GHA2DB_FORCE_PERIODS"))
	runs, err := collection.RunDurations("GHA2DB_MAX_RUN_DURATION", b.env.Get("GHA2DB_MAX_RUN_DURATION"))
	if err != nil {
		b.fail(err)
	}
	c.MaxRunDuration = runs

	c.ActorsFilter = b.flag("GHA2DB_ACTORS_FILTER")
	if c.ActorsFilter {
		c.ActorsAllow = b.matcher("GHA2DB_ACTORS_ALLOW")
		c.ActorsForbid = b.matcher("GHA2DB_ACTORS_FORBID")
	}

	c.Local = b.flag("GHA2DB_LOCAL")
	c.LocalCmd = b.flag("GHA2DB_LOCAL_CMD")
	c.Absolute = b.flag("GHA2DB_ABSOLUTE")
	c.PidFileRoot = b.str("GHA2DB_PID_FILE_ROOT", "devstats")
	c.Project = b.str("GHA2DB_PROJECT", deref(ov.Project))
	c.SharedDB = deref(ov.SharedDB)
	c.ProjectMainRepo = deref(ov.MainRepo)
}

// cpus reads GHA2DB_ST and GHA2DB_NCPUS; a CPU count of exactly one also
// forces single threaded mode.
func (b *builder) cpus(c *Ctx) {
	c.ST = b.flag("GHA2DB_ST")
	if n := b.number("GHA2DB_NCPUS", 0, positive); n > 0 {
		c.NCPUs = n
		if n == 1 {
			c.ST = true
		}
	}
}

// derived is pass two: settings computed from already resolved ones.
func (b *builder) derived(c *Ctx, o options) error {
	c.DataDir = withTrailingSlash(b.str("GHA2DB_DATADIR", DefaultDataDir))
	c.ReposDir = withTrailingSlash(b.str("GHA2DB_REPOS_DIR", b.env.Get("HOME")+"/devstats_repos/"))
	c.JSONsDir = withTrailingSlash(b.str("GHA2DB_JSONS_DIR", "./jsons/"))

	proj := projectPrefix(c.Project)
	c.VarsFnYaml = b.str("GHA2DB_VARS_FN_YAML", "vars.yaml")
	c.MetricsYaml = b.str("GHA2DB_METRICS_YAML", "metrics/"+proj+"metrics.yaml")
	c.TagsYaml = b.str("GHA2DB_TAGS_YAML", "metrics/"+proj+"tags.yaml")
	c.ColumnsYaml = b.str("GHA2DB_COLUMNS_YAML", "metrics/"+proj+"columns.yaml")
	c.VarsYaml = b.str("GHA2DB_VARS_YAML", "metrics/"+proj+c.VarsFnYaml)
	c.SkipDatesYaml = b.str("GHA2DB_SKIP_DATES_YAML", "skip_dates.yaml")
	c.TestsYaml = b.str("GHA2DB_TESTS_YAML", "tests.yaml")
	c.ProjectsYaml = b.str("GHA2DB_PROJECTS_YAML", "projects.yaml")
	c.AffiliationsJSON = b.str("GHA2DB_AFFILIATIONS_JSON", "github_users.json")
	c.CompanyAcqYaml = b.str("GHA2DB_COMPANY_ACQ_YAML", "companies.yaml")

	if !strings.HasPrefix(c.WebHookPort, ":") {
		c.WebHookPort = ":" + c.WebHookPort
	}

	c.ProjectsCommits = b.env.Get("GHA2DB_PROJECTS_COMMITS")
	if c.PropagateOnlyVar && c.ProjectsCommits == "" {
		if only := b.env.Get("ONLY"); only != "" {
			c.ProjectsCommits = strings.Join(strings.Fields(only), ",")
		}
	}

	c.GitHubOAuth = b.env.Get("GHA2DB_GITHUB_OAUTH")
	if c.GitHubOAuth == "" {
		oauth, err := probeOAuth(o.fs, o.oauthCandidates)
		if err != nil {
			return err
		}
		c.GitHubOAuth = oauth
	}
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
