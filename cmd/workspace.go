package cmd

import (
	"path/filepath"
	"strings"

	"github.com/haavardr/testament/internal/model"
	"github.com/haavardr/testament/internal/workspace"
)

// resolveProjects runs the Workspace Locator over startPath and builds the
// Pending model.TestProject set the UI and the headless run command both
// start from, per spec §4.4: discovery expects Pending projects to already
// exist before it starts filling them in.
func resolveProjects(startPath string) (*workspace.Result, []*model.TestProject, []string, error) {
	result, err := workspace.Locate(startPath)
	if err != nil {
		return nil, nil, nil, err
	}

	projects := make([]*model.TestProject, len(result.Projects))
	dirs := make([]string, len(result.Projects))
	for i, ref := range result.Projects {
		dir := filepath.Dir(ref.Path)
		name := strings.TrimSuffix(filepath.Base(ref.Path), filepath.Ext(ref.Path))
		projects[i] = model.NewTestProject(name, ref.Path, dir)
		dirs[i] = dir
	}
	return result, projects, dirs, nil
}

// workspaceRootOf picks the directory config and history should anchor on:
// the solution's directory when one was found, else the common ancestor
// is just the first project's directory, matching the teacher's git-root
// fallback in spirit (nearest meaningful root, never the bare cwd).
func workspaceRootOf(result *workspace.Result, startPath string) string {
	if result.SolutionFile != "" {
		return filepath.Dir(result.SolutionFile)
	}
	if len(result.Projects) > 0 {
		return filepath.Dir(result.Projects[0].Path)
	}
	abs, err := filepath.Abs(startPath)
	if err != nil {
		return startPath
	}
	return abs
}
