package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/devstats/gha2db/internal/collection"
	"github.com/devstats/gha2db/internal/convert"
	"github.com/devstats/gha2db/internal/env"
	"github.com/devstats/gha2db/internal/fatal"
)

func newTestCtx(t *testing.T, vars map[string]string, opts ...Option) *Ctx {
	t.Helper()
	handler := fatal.New(zaptest.NewLogger(t), fatal.WithHook(zapcore.WriteThenPanic))
	base := []Option{WithEnv(vars), WithFs(afero.NewMemMapFs()), WithFatal(handler)}
	return New(append(base, opts...)...)
}

// fatalEntry builds a Ctx expecting resolution to escalate and returns the
// logged diagnostic.
func fatalEntry(t *testing.T, vars map[string]string, opts ...Option) observer.LoggedEntry {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	handler := fatal.New(zap.New(core), fatal.WithHook(zapcore.WriteThenPanic))
	base := []Option{WithEnv(vars), WithFs(afero.NewMemMapFs()), WithFatal(handler)}

	require.Panics(t, func() { New(append(base, opts...)...) })
	require.Equal(t, 1, logs.Len())
	return logs.All()[0]
}

func TestNewDefaults(t *testing.T) {
	c := newTestCtx(t, nil)

	assert.Equal(t, 0, c.Debug)
	assert.Equal(t, 0, c.CmdDebug)
	assert.False(t, c.ST)
	assert.Equal(t, 0, c.NCPUs)
	assert.Equal(t, "/etc/gha2db/", c.DataDir)
	assert.Equal(t, "/devstats_repos/", c.ReposDir)
	assert.Equal(t, "./jsons/", c.JSONsDir)
	assert.True(t, c.LogTime)
	assert.True(t, c.DBOut)
	assert.False(t, c.JSONOut)
	assert.True(t, c.Table)
	assert.True(t, c.Tools)
	assert.True(t, c.LogToDB)
	assert.True(t, c.AutoFetchCommits)
	assert.True(t, c.CheckPayload)
	assert.True(t, c.FullDeploy)
	assert.True(t, c.CommitsFilesStatsEnabled)
	assert.True(t, c.CommitsLOCStatsEnabled)
	assert.True(t, c.CanReconnect)
	assert.True(t, c.ExecFatal)
	assert.False(t, c.ExecQuiet)
	assert.True(t, c.RandComputeAtThisDate)
	assert.False(t, c.AllowRandTagsColsCompute)

	assert.Equal(t, 1, c.MinGHAPIPoints)
	assert.Equal(t, 10, c.MaxGHAPIWaitSeconds)
	assert.Equal(t, 6, c.MaxGHAPIRetry)
	assert.Equal(t, 24, c.RecalcReciprocal)
	assert.Equal(t, 0, c.MaxHistograms)
	assert.Equal(t, 3, c.HTTPTimeout)
	assert.Equal(t, 5, c.HTTPRetry)
	assert.InDelta(t, 1.0, c.ProjectScale, 1e-9)

	assert.Equal(t, time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC), c.DefaultStartDate)
	assert.Equal(t, 9*time.Hour, c.MaxRunningFlagAge)
	assert.Equal(t, "events_h", c.LastSeries)
	assert.Equal(t, "1 week", c.ClearDBPeriod)
	assert.Equal(t, "16 hours", c.ClearAffsLockPeriod)
	assert.Equal(t, "40 hours", c.ClearGiantLockPeriod)
	assert.Equal(t, "2 hours", c.RecentRange)
	assert.Equal(t, "1 day", c.RecentReposRange)

	assert.Equal(t, "metrics/metrics.yaml", c.MetricsYaml)
	assert.Equal(t, "metrics/tags.yaml", c.TagsYaml)
	assert.Equal(t, "metrics/columns.yaml", c.ColumnsYaml)
	assert.Equal(t, "metrics/vars.yaml", c.VarsYaml)
	assert.Equal(t, "skip_dates.yaml", c.SkipDatesYaml)
	assert.Equal(t, "tests.yaml", c.TestsYaml)
	assert.Equal(t, "projects.yaml", c.ProjectsYaml)
	assert.Equal(t, "github_users.json", c.AffiliationsJSON)
	assert.Equal(t, "companies.yaml", c.CompanyAcqYaml)
	assert.Equal(t, "devstats", c.PidFileRoot)
	assert.Equal(t, PublicAccess, c.GitHubOAuth)

	assert.Equal(t, "127.0.0.1", c.WebHookHost)
	assert.Equal(t, ":1982", c.WebHookPort)
	assert.Equal(t, "/hook", c.WebHookRoot)

	assert.Equal(t, []int{10, 30, 60, 120, 300, 600, 1200, 3600}, c.Trials)
	assert.Equal(t, []string{"master"}, c.DeployBranches)
	assert.Equal(t, []string{"Passed", "Fixed"}, c.DeployStatuses)
	assert.Equal(t, []string{"push"}, c.DeployTypes)
	assert.Equal(t, []int{0}, c.DeployResults)
	assert.Nil(t, c.InputDBs)
	assert.Empty(t, c.ProjectsOverride)
	assert.Equal(t, 0, c.ExcludeRepos.Len())
	assert.True(t, c.OnlyMetrics.Permits("any"))
	assert.Nil(t, c.ComputePeriods)
	assert.Nil(t, c.MaxRunDuration)
	assert.False(t, c.ActorsAllow.IsSet())

	assert.Equal(t, "localhost", c.Postgres.Host)
	assert.Equal(t, "5432", c.Postgres.Port)
	assert.Equal(t, "gha", c.Postgres.DB)
	assert.Equal(t, "gha_admin", c.Postgres.User)
	assert.Equal(t, Secret("password"), c.Postgres.Pass)
	assert.Equal(t, "disable", c.Postgres.SSL)
	assert.Equal(t, "devstats.cncf.io", c.DefaultHostname)
}

func TestBlankValuesUseDefaults(t *testing.T) {
	blank := " \t "
	c := newTestCtx(t, map[string]string{
		"GHA2DB_DATADIR":          blank,
		"GHA2DB_DEBUG":            blank,
		"GHA2DB_ST":               blank,
		"GHA2DB_NCPUS":            blank,
		"GHA2DB_MIN_GHAPI_POINTS": blank,
		"GHA2DB_TRIALS":           blank,
		"GHA2DB_DEPLOY_BRANCHES":  blank,
		"GHA2DB_MAX_RUN_DURATION": blank,
		"GHA2DB_SKIPLOG":          blank,
		"PG_HOST":                 blank,
	})

	assert.Equal(t, DefaultDataDir, c.DataDir)
	assert.Equal(t, 0, c.Debug)
	assert.False(t, c.ST)
	assert.Equal(t, 1, c.MinGHAPIPoints)
	assert.Equal(t, []int{10, 30, 60, 120, 300, 600, 1200, 3600}, c.Trials)
	assert.Equal(t, []string{"master"}, c.DeployBranches)
	assert.Nil(t, c.MaxRunDuration)
	assert.True(t, c.LogToDB)
	assert.Equal(t, "localhost", c.Postgres.Host)
}

func TestDirectoriesEndWithSlash(t *testing.T) {
	cases := map[string]string{
		"/data":  "/data/",
		"/data/": "/data/",
	}
	for in, want := range cases {
		c := newTestCtx(t, map[string]string{
			"GHA2DB_DATADIR":   in,
			"GHA2DB_REPOS_DIR": in,
			"GHA2DB_JSONS_DIR": in,
		})
		assert.Equal(t, want, c.DataDir, in)
		assert.Equal(t, want, c.ReposDir, in)
		assert.Equal(t, want, c.JSONsDir, in)
	}

	c := newTestCtx(t, map[string]string{"HOME": "/home/gha"})
	assert.Equal(t, "/home/gha/devstats_repos/", c.ReposDir)
}

func TestExecutionMode(t *testing.T) {
	tests := []struct {
		name  string
		vars  map[string]string
		st    bool
		ncpus int
	}{
		{name: "defaults", vars: nil, st: false, ncpus: 0},
		{name: "st flag", vars: map[string]string{"GHA2DB_ST": "1"}, st: true, ncpus: 0},
		{name: "one cpu forces st", vars: map[string]string{"GHA2DB_NCPUS": "1"}, st: true, ncpus: 1},
		{name: "one cpu with st unset", vars: map[string]string{"GHA2DB_ST": "", "GHA2DB_NCPUS": "1"}, st: true, ncpus: 1},
		{name: "many cpus", vars: map[string]string{"GHA2DB_NCPUS": "4"}, st: false, ncpus: 4},
		{name: "many cpus keep st", vars: map[string]string{"GHA2DB_ST": "y", "GHA2DB_NCPUS": "4"}, st: true, ncpus: 4},
		{name: "zero ignored", vars: map[string]string{"GHA2DB_NCPUS": "0"}, st: false, ncpus: 0},
		{name: "negative ignored", vars: map[string]string{"GHA2DB_NCPUS": "-2"}, st: false, ncpus: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCtx(t, tt.vars)
			assert.Equal(t, tt.st, c.ST)
			assert.Equal(t, tt.ncpus, c.NCPUs)
		})
	}

	c := newTestCtx(t, map[string]string{"GHA2DB_NCPUS": "3"})
	assert.Equal(t, 3, c.CPUs())
	assert.Positive(t, newTestCtx(t, nil).CPUs())
}

func TestDebugLevel(t *testing.T) {
	c := newTestCtx(t, map[string]string{"GHA2DB_DEBUG": "2", "GHA2DB_CMDDEBUG": "-1"})
	assert.Equal(t, 2, c.Debug)
	assert.Equal(t, -1, c.CmdDebug)

	entry := fatalEntry(t, map[string]string{"GHA2DB_DEBUG": "abc"})
	fields := entry.ContextMap()
	assert.Equal(t, "GHA2DB_DEBUG", fields["var"])
	assert.Equal(t, "abc", fields["value"])
	assert.Equal(t, "int", fields["type"])
}

func TestGuardedNumbers(t *testing.T) {
	t.Run("out of guard keeps default", func(t *testing.T) {
		c := newTestCtx(t, map[string]string{
			"GHA2DB_MIN_GHAPI_POINTS":  "-5",
			"GHA2DB_MAX_GHAPI_WAIT":    "-1",
			"GHA2DB_MAX_GHAPI_RETRY":   "0",
			"GHA2DB_RECALC_RECIPROCAL": "0",
			"GHA2DB_MAX_HIST":          "-3",
		})
		assert.Equal(t, 1, c.MinGHAPIPoints)
		assert.Equal(t, 10, c.MaxGHAPIWaitSeconds)
		assert.Equal(t, 6, c.MaxGHAPIRetry)
		assert.Equal(t, 24, c.RecalcReciprocal)
		assert.Equal(t, 0, c.MaxHistograms)
	})

	t.Run("in guard overwrites", func(t *testing.T) {
		c := newTestCtx(t, map[string]string{
			"GHA2DB_MIN_GHAPI_POINTS":  "0",
			"GHA2DB_MAX_GHAPI_WAIT":    "60",
			"GHA2DB_MAX_GHAPI_RETRY":   "1",
			"GHA2DB_RECALC_RECIPROCAL": "12",
			"GHA2DB_MAX_HIST":          "8",
		})
		assert.Equal(t, 0, c.MinGHAPIPoints)
		assert.Equal(t, 60, c.MaxGHAPIWaitSeconds)
		assert.Equal(t, 1, c.MaxGHAPIRetry)
		assert.Equal(t, 12, c.RecalcReciprocal)
		assert.Equal(t, 8, c.MaxHistograms)
	})

	t.Run("non numeric is fatal", func(t *testing.T) {
		entry := fatalEntry(t, map[string]string{"GHA2DB_MIN_GHAPI_POINTS": "many"})
		assert.Equal(t, "GHA2DB_MIN_GHAPI_POINTS", entry.ContextMap()["var"])
	})
}

func TestUnguardedNumbers(t *testing.T) {
	c := newTestCtx(t, map[string]string{
		"GHA2DB_TMOFFSET":      "-6",
		"GHA2DB_HTTP_TIMEOUT":  "0",
		"GHA2DB_HTTP_RETRY":    "2",
		"GHA2DB_PROJECT_SCALE": "0.5",
	})
	assert.Equal(t, -6, c.TmOffset)
	assert.Equal(t, 0, c.HTTPTimeout)
	assert.Equal(t, 2, c.HTTPRetry)
	assert.InDelta(t, 0.5, c.ProjectScale, 1e-9)

	fatalEntry(t, map[string]string{"GHA2DB_PROJECT_SCALE": "huge"})
	fatalEntry(t, map[string]string{"GHA2DB_HTTP_RETRY": "3x"})
}

func TestDatesAndDurations(t *testing.T) {
	c := newTestCtx(t, map[string]string{
		"GHA2DB_STARTDT":              "2015-01-01 00:00:00",
		"GHA2DB_STARTDT_FORCE":        "1",
		"GHA2DB_MAX_RUNNING_FLAG_AGE": "2d",
	})
	assert.Equal(t, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), c.DefaultStartDate)
	assert.True(t, c.ForceStartDate)
	assert.Equal(t, 48*time.Hour, c.MaxRunningFlagAge)

	entry := fatalEntry(t, map[string]string{"GHA2DB_MAX_RUNNING_FLAG_AGE": "a while"})
	assert.Equal(t, "duration", entry.ContextMap()["type"])

	entry = fatalEntry(t, map[string]string{"GHA2DB_STARTDT": "someday"})
	assert.Equal(t, "time", entry.ContextMap()["type"])
}

func TestCollections(t *testing.T) {
	c := newTestCtx(t, map[string]string{
		"GHA2DB_TRIALS":            "1,2,3",
		"GHA2DB_DEPLOY_BRANCHES":   "master,release",
		"GHA2DB_DEPLOY_RESULTS":    "0,1",
		"GHA2DB_INPUT_DBS":         "db1,db2",
		"GHA2DB_PROJECTS_OVERRIDE": "+a,-b,x",
		"GHA2DB_EXCLUDE_REPOS":     "org/repo",
		"GHA2DB_ONLY_VARS":         "hostname",
		"GHA2DB_SKIP_METRICS":      "events",
		"GHA2DB_FORCE_PERIODS":     "y10:t,m:f",
		"GHA2DB_MAX_RUN_DURATION":  "tags:1h:0,calc_metric:12h:1",
	})

	assert.Equal(t, []int{1, 2, 3}, c.Trials)
	assert.Equal(t, []string{"master", "release"}, c.DeployBranches)
	assert.Equal(t, []int{0, 1}, c.DeployResults)
	assert.Equal(t, []string{"db1", "db2"}, c.InputDBs)
	assert.Equal(t, map[string]bool{"a": true, "b": false}, c.ProjectsOverride)
	assert.False(t, c.ExcludeRepos.Permits("org/repo"))
	assert.True(t, c.OnlyVars.Permits("hostname"))
	assert.False(t, c.OnlyVars.Permits("other"))
	assert.True(t, c.SkipMetrics.Contains("events"))
	assert.True(t, c.ComputePeriods["y10"].Has(true))
	assert.True(t, c.ComputePeriods["m"].Has(false))
	assert.Equal(t, collection.RunLimit{Duration: 12 * time.Hour, ExitStatus: 1}, c.MaxRunDuration["calc_metric"])

	assert.True(t, c.ProjectEnabled("a", true))
	assert.False(t, c.ProjectEnabled("b", false))
	assert.True(t, c.ProjectEnabled("c", false))
	assert.False(t, c.ProjectEnabled("c", true))
}

func TestDuplicateRunDurationIsFatal(t *testing.T) {
	entry := fatalEntry(t, map[string]string{"GHA2DB_MAX_RUN_DURATION": "tags:1h:0,tags:2h:1"})
	fields := entry.ContextMap()
	assert.Equal(t, "tags", fields["key"])
	assert.Contains(t, fields["existing"], "duration:1h")
	assert.Contains(t, fields["existing"], "status:0")
}

func TestMalformedTrialsIsFatal(t *testing.T) {
	entry := fatalEntry(t, map[string]string{"GHA2DB_TRIALS": "10,later"})
	assert.Equal(t, "GHA2DB_TRIALS", entry.ContextMap()["var"])
}

func TestProjectScopedPaths(t *testing.T) {
	c := newTestCtx(t, map[string]string{
		"GHA2DB_PROJECT":      "kubernetes",
		"GHA2DB_VARS_FN_YAML": "sync_vars.yaml",
		"GHA2DB_TAGS_YAML":    "custom/tags.yaml",
	})
	assert.Equal(t, "kubernetes", c.Project)
	assert.Equal(t, "metrics/kubernetes/metrics.yaml", c.MetricsYaml)
	assert.Equal(t, "custom/tags.yaml", c.TagsYaml)
	assert.Equal(t, "metrics/kubernetes/columns.yaml", c.ColumnsYaml)
	assert.Equal(t, "metrics/kubernetes/sync_vars.yaml", c.VarsYaml)
	assert.Equal(t, "sync_vars.yaml", c.VarsFnYaml)
}

func TestDataPath(t *testing.T) {
	c := newTestCtx(t, map[string]string{"GHA2DB_DATADIR": "/srv/gha"})
	assert.Equal(t, "/srv/gha/projects.yaml", c.DataPath("projects.yaml"))

	c = newTestCtx(t, map[string]string{"GHA2DB_LOCAL": "1"})
	assert.Equal(t, "./projects.yaml", c.DataPath("projects.yaml"))

	c = newTestCtx(t, map[string]string{"GHA2DB_ABSOLUTE": "1"})
	assert.Equal(t, "/tmp/q.sql", c.DataPath("/tmp/q.sql"))
}

type brokenFs struct {
	afero.Fs
}

func (brokenFs) Stat(name string) (os.FileInfo, error) {
	return nil, &os.PathError{Op: "stat", Path: name, Err: os.ErrPermission}
}

func TestGitHubOAuthProbe(t *testing.T) {
	t.Run("explicit value wins", func(t *testing.T) {
		c := newTestCtx(t, map[string]string{"GHA2DB_GITHUB_OAUTH": "token123"}, WithFs(brokenFs{afero.NewMemMapFs()}))
		assert.Equal(t, "token123", c.GitHubOAuth)
	})

	t.Run("first existing candidate", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/etc/github/oauth", []byte("t"), 0o600))
		c := newTestCtx(t, nil, WithFs(fs))
		assert.Equal(t, "/etc/github/oauth", c.GitHubOAuth)

		require.NoError(t, afero.WriteFile(fs, "/etc/github/oauths", []byte("t1,t2"), 0o600))
		c = newTestCtx(t, nil, WithFs(fs))
		assert.Equal(t, "/etc/github/oauths", c.GitHubOAuth)
	})

	t.Run("custom candidates", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/run/secrets/gh", []byte("t"), 0o600))
		c := newTestCtx(t, nil, WithFs(fs), WithOAuthCandidates("/missing", "/run/secrets/gh"))
		assert.Equal(t, "/run/secrets/gh", c.GitHubOAuth)
	})

	t.Run("no candidate means public access", func(t *testing.T) {
		c := newTestCtx(t, nil)
		assert.Equal(t, "-", c.GitHubOAuth)
	})

	t.Run("probe failure is fatal", func(t *testing.T) {
		entry := fatalEntry(t, nil, WithFs(brokenFs{afero.NewMemMapFs()}))
		assert.Equal(t, "/etc/github/oauths", entry.ContextMap()["path"])
	})
}

func TestWebhook(t *testing.T) {
	c := newTestCtx(t, map[string]string{
		"GHA2DB_WHPORT":              "2982",
		"GHA2DB_WHHOST":              "0.0.0.0",
		"GHA2DB_SKIP_VERIFY_PAYLOAD": "1",
		"GHA2DB_PROJECT_ROOT":        "/home/devstats",
	})
	assert.Equal(t, ":2982", c.WebHookPort)
	assert.Equal(t, "0.0.0.0", c.WebHookHost)
	assert.False(t, c.CheckPayload)
	assert.True(t, c.FullDeploy)
	assert.Equal(t, "/home/devstats", c.ProjectRoot)

	c = newTestCtx(t, map[string]string{"GHA2DB_WHPORT": ":8080"})
	assert.Equal(t, ":8080", c.WebHookPort)
}

func TestMgetc(t *testing.T) {
	c := newTestCtx(t, map[string]string{"GHA2DB_MGETC": "yes"})
	assert.Equal(t, "y", c.Mgetc)
	assert.Equal(t, "", newTestCtx(t, nil).Mgetc)
}

func TestPropagateOnlyVar(t *testing.T) {
	c := newTestCtx(t, map[string]string{
		"GHA2DB_PROPAGATE_ONLY_VAR": "1",
		"ONLY":                      "kubernetes  prometheus opentracing",
	})
	assert.Equal(t, "kubernetes,prometheus,opentracing", c.ProjectsCommits)

	c = newTestCtx(t, map[string]string{
		"GHA2DB_PROPAGATE_ONLY_VAR": "1",
		"GHA2DB_PROJECTS_COMMITS":   "envoy",
		"ONLY":                      "kubernetes",
	})
	assert.Equal(t, "envoy", c.ProjectsCommits)

	c = newTestCtx(t, map[string]string{"ONLY": "kubernetes"})
	assert.Equal(t, "", c.ProjectsCommits)
}

func TestActorFilter(t *testing.T) {
	c := newTestCtx(t, map[string]string{
		"GHA2DB_ACTORS_ALLOW":  "^bot",
		"GHA2DB_ACTORS_FORBID": "(",
	})
	assert.False(t, c.ActorsFilter)
	assert.False(t, c.ActorsAllow.IsSet(), "patterns are ignored without GHA2DB_ACTORS_FILTER")
	assert.True(t, c.ActorAllowed("anyone"))

	c = newTestCtx(t, map[string]string{
		"GHA2DB_ACTORS_FILTER": "1",
		"GHA2DB_ACTORS_ALLOW":  "^k8s-",
		"GHA2DB_ACTORS_FORBID": "-bot$",
	})
	assert.Equal(t, "^k8s-", c.ActorsAllow.String())
	assert.True(t, c.ActorAllowed("k8s-ci"))
	assert.False(t, c.ActorAllowed("k8s-ci-bot"))
	assert.False(t, c.ActorAllowed("someone"))

	entry := fatalEntry(t, map[string]string{
		"GHA2DB_ACTORS_FILTER": "1",
		"GHA2DB_ACTORS_FORBID": "(",
	})
	assert.Equal(t, "regexp", entry.ContextMap()["type"])
}

func TestOverridesPrecedence(t *testing.T) {
	project := "prometheus"
	scale := 2.5
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	shared := "allprj"
	mainRepo := "prometheus/prometheus"
	ov := Overrides{
		Project:      &project,
		ProjectScale: &scale,
		StartDate:    &start,
		SharedDB:     &shared,
		MainRepo:     &mainRepo,
	}

	c := newTestCtx(t, nil, WithOverrides(ov))
	assert.Equal(t, "prometheus", c.Project)
	assert.Equal(t, "metrics/prometheus/metrics.yaml", c.MetricsYaml)
	assert.InDelta(t, 2.5, c.ProjectScale, 1e-9)
	assert.Equal(t, start, c.DefaultStartDate)
	assert.Equal(t, "allprj", c.SharedDB)
	assert.Equal(t, "prometheus/prometheus", c.ProjectMainRepo)

	c = newTestCtx(t, map[string]string{
		"GHA2DB_PROJECT":       "envoy",
		"GHA2DB_PROJECT_SCALE": "3",
		"GHA2DB_STARTDT":       "2016-01-01",
	}, WithOverrides(ov))
	assert.Equal(t, "envoy", c.Project)
	assert.InDelta(t, 3.0, c.ProjectScale, 1e-9)
	assert.Equal(t, time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), c.DefaultStartDate)
}

func TestWithDatabase(t *testing.T) {
	c := newTestCtx(t, map[string]string{"PG_DB": "gha"}, WithDatabase("devstats"))
	assert.Equal(t, "devstats", c.Postgres.DB)
	assert.False(t, c.CanReconnect)
}

func TestWithTestMode(t *testing.T) {
	assert.True(t, newTestCtx(t, nil, WithTestMode()).TestMode)
	assert.False(t, newTestCtx(t, nil).TestMode)
}

func TestResolveErrors(t *testing.T) {
	base := options{fs: afero.NewMemMapFs(), oauthCandidates: defaultOAuthCandidates}

	o := base
	o.source = env.Map{"GHA2DB_DEBUG": "abc", "GHA2DB_MAX_RUN_DURATION": "a:1h:0,a:1h:0"}
	c, err := resolve(o)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, convert.ErrMalformedValue, "first error wins")

	o = base
	o.source = env.Map{"GHA2DB_MAX_RUN_DURATION": "a:1h:0,a:1h:0"}
	_, err = resolve(o)
	assert.ErrorIs(t, err, collection.ErrDuplicateDefinition)

	o = base
	o.fs = brokenFs{afero.NewMemMapFs()}
	_, err = resolve(o)
	assert.ErrorIs(t, err, ErrProbeFailure)
	assert.ErrorIs(t, err, os.ErrPermission)
}
