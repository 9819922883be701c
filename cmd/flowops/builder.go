package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	infradrv "github.com/kompox/flowops/adapters/drivers/infra"
	"github.com/kompox/flowops/adapters/store/inmem"
	"github.com/kompox/flowops/adapters/store/rdb"
	"github.com/kompox/flowops/config/project"
	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/internal/metrics"
	"github.com/kompox/flowops/internal/services"
	"github.com/kompox/flowops/internal/terminal"
	"github.com/kompox/flowops/usecase/workspace"
)

// reposCache keeps one set of repositories per db-url for the process, so a
// memory: store is shared by every use case built in the same run.
var (
	reposCache   = map[string]*domain.Repositories{}
	reposCacheMu sync.Mutex
)

// buildRepos creates repositories from the db_url setting.
func buildRepos(cmd *cobra.Command) (*domain.Repositories, error) {
	dbURL := settingsFrom(cmd.Context()).DBURL
	reposCacheMu.Lock()
	defer reposCacheMu.Unlock()
	if cached, ok := reposCache[dbURL]; ok {
		return cached, nil
	}
	var repos *domain.Repositories
	switch {
	case dbURL == "memory:":
		repos = inmem.NewStore().Repositories()
	case strings.HasPrefix(dbURL, "sqlite:") || strings.HasPrefix(dbURL, "sqlite3:"):
		if path := dbURL[strings.Index(dbURL, ":")+1:]; path != "" && !strings.HasPrefix(path, ":memory:") {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, err
			}
		}
		db, err := rdb.OpenFromURL(dbURL)
		if err != nil {
			return nil, err
		}
		if err := rdb.AutoMigrate(db); err != nil {
			return nil, err
		}
		repos = rdb.NewRepositories(db)
	default:
		return nil, fmt.Errorf("unsupported db scheme: %s", dbURL)
	}
	reposCache[dbURL] = repos
	return repos, nil
}

// buildServices connects all use cases over the configured store. Metrics
// may be nil outside the server.
func buildServices(cmd *cobra.Command, m *metrics.Metrics) (*services.Services, error) {
	repos, err := buildRepos(cmd)
	if err != nil {
		return nil, err
	}
	s := settingsFrom(cmd.Context())
	return services.New(repos, services.Options{
		Metrics: m,
		Infrastructure: infradrv.NewPort(infradrv.Settings{
			Kubeconfig: s.Kubeconfig,
			APIURL:     s.APIURL,
			APIDNSName: s.APIDNSName,
			Out:        cmd.OutOrStdout(),
		}),
		Locator: project.New(appFs, "."),
	}), nil
}

// currentWorkspace resolves the workspace setting. The default workspace is
// created on first use.
func currentWorkspace(cmd *cobra.Command, svc *services.Services) (string, error) {
	ref := settingsFrom(cmd.Context()).Workspace
	out, err := svc.Workspaces.Resolve(cmd.Context(), &workspace.ResolveInput{
		Ref:    ref,
		Create: ref == "" || ref == workspace.DefaultName,
	})
	if err != nil {
		return "", err
	}
	return out.Workspace.ID, nil
}

// scoped builds the services and resolves the workspace in one step.
func scoped(cmd *cobra.Command) (*services.Services, string, error) {
	svc, err := buildServices(cmd, nil)
	if err != nil {
		return nil, "", err
	}
	ws, err := currentWorkspace(cmd, svc)
	if err != nil {
		return nil, "", err
	}
	return svc, ws, nil
}

func console(cmd *cobra.Command) *terminal.Console {
	c := terminal.NewConsole(cmd.OutOrStdout())
	if f, ok := cmd.OutOrStdout().(*os.File); !ok || f != os.Stdout {
		c.Plain = true
	}
	return c
}
