package api

// Default returns the reference release sequence: render the HTML
// documentation, build the navigation, then clean, write the source
// manifest and build the Windows installer. The bdist_wininst step with a
// custom bitmap and install script is kept but disabled; its bitmap and
// install script are not part of the tree.
func Default() *Release {
	disabled := false

	return &Release{
		Context: map[string]any{
			"python":        `{{ env "PYTHON" | default "python" }}`,
			"rst2html":      `{{ env "RST2HTML" | default "rst2html.py" }}`,
			"stylesheet":    "lc.css",
			"docDir":        "doc/en",
			"compiler":      "mingw32",
			"format":        "bdist_wininst",
			"bitmap":        "guruicon.bmp",
			"installScript": "install-linkchecker.py",
		},
		Tools: map[string]Tool{
			"rst2html": {Path: "{{ .python }}", Args: []string{"{{ .rst2html }}"}},
			"htmlnav":  {Path: "{{ .python }}", Args: []string{"make_nav.py"}},
			"setup":    {Path: "{{ .python }}", Args: []string{"setup.py"}},
		},
		Documents: []Document{
			{Source: "index.txt", Output: "index.html"},
			{Source: "install.txt", Output: "install.html"},
			{Source: "upgrading.txt", Output: "upgrading.html"},
			{Source: "documentation.txt", Output: "documentation.html"},
			{Source: "other.txt", Output: "other.html"},
		},
		Phases: []PhaseConfig{
			{
				Name: "documentation",
				Dir:  "{{ .docDir }}",
				Steps: []StepConfig{
					{
						Name: "render",
						Type: StepTypeCommand,
						Command: &CommandConfig{
							Tool:    "rst2html",
							Args:    []string{"--stylesheet-path={{ .stylesheet }}", "--time", "{{ .doc.Source }}", "{{ .doc.Output }}"},
							ForEach: ForEachDocuments,
						},
						Expect: []string{"{{ .doc.Output }}"},
					},
					{
						Name:    "navigation",
						Type:    StepTypeCommand,
						Command: &CommandConfig{Tool: "htmlnav"},
					},
				},
			},
			{
				Name: "packaging",
				Dir:  ".",
				Steps: []StepConfig{
					{
						Name:    "clean",
						Type:    StepTypeCommand,
						Command: &CommandConfig{Tool: "setup", Args: []string{"clean", "--all"}},
					},
					{
						Name:    "sdist-manifest",
						Type:    StepTypeCommand,
						Command: &CommandConfig{Tool: "setup", Args: []string{"sdist", "--manifest-only"}},
						Expect:  []string{"MANIFEST"},
					},
					{
						Name:    "build-installer",
						Type:    StepTypeCommand,
						Command: &CommandConfig{Tool: "setup", Args: []string{"build", "-c", "{{ .compiler }}", "{{ .format }}"}},
					},
					{
						Name:    "installer-custom",
						Type:    StepTypeCommand,
						Enabled: &disabled,
						Command: &CommandConfig{
							Tool: "setup",
							Args: []string{"bdist_wininst", "--bitmap={{ .bitmap }}", "--install-script={{ .installScript }}"},
						},
					},
				},
			},
		},
		Artifacts: []string{"dist/*", "MANIFEST"},
	}
}
