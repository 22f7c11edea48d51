// compliancegen generates audit-ready compliance documents against the
// Primus GFS specification catalog: deterministic outline, evidence mining
// from uploaded documents, section-by-section model calls, validation, and
// assembly into a single document text ready for DOCX encoding.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"compliancegen/internal/config"
	"compliancegen/internal/evidence"
	"compliancegen/internal/llm"
	"compliancegen/internal/logging"
	"compliancegen/internal/pipeline"
	"compliancegen/internal/spec"
	"compliancegen/internal/store"
	"compliancegen/internal/structure"
)

var (
	verbose    bool
	configPath string
	moduleID   string
)

var rootCmd = &cobra.Command{
	Use:   "compliancegen",
	Short: "Compliance document generation against the Primus GFS catalog",
	Long: `compliancegen turns a regulatory specification and a set of evidence
documents into a complete, audit-ready compliance document.

The outline is derived deterministically from the specification catalog;
only section prose comes from the model. Output is plain text intended for
an external DOCX encoder.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Init(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

var outlineCmd = &cobra.Command{
	Use:   "outline <submodule>",
	Short: "Print the deterministic document outline for a checklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := spec.NewLoader()
		if err != nil {
			return err
		}
		answers := map[string]string{}
		if company, _ := cmd.Flags().GetString("company"); company != "" {
			answers["company"] = company
		}
		out, err := structure.BuildDeterministicStructure(loader, moduleID, args[0], answers)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var requirementsCmd = &cobra.Command{
	Use:   "requirements <submodule-code>",
	Short: "Print the flattened requirements list for a checklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := spec.NewLoader()
		if err != nil {
			return err
		}
		out, err := structure.BuildRequirementsList(loader, moduleID, args[0])
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available submodule checklists for a module",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := spec.NewLoader()
		if err != nil {
			return err
		}
		subs, err := loader.Submodules(moduleID)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			fmt.Printf("%-8s %s\n", sub.Code, sub.Title)
		}
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate <submodule>",
	Short: "Generate a complete compliance document for a checklist",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := logging.Named("cli")

	userCfg, err := config.LoadUserConfig(configPath)
	if err != nil {
		return err
	}
	if userCfg.APIKey == "" {
		return fmt.Errorf("no API key configured: set COMPLIANCEGEN_API_KEY or api_key in the config file")
	}

	loader, err := spec.NewLoader()
	if err != nil {
		return err
	}

	docsDir, _ := cmd.Flags().GetString("docs")
	docs, err := loadEvidenceDocuments(docsDir)
	if err != nil {
		return err
	}
	log.Info("loaded evidence documents", zap.Int("count", len(docs)))

	genCfg := userCfg.GenerationOrDefault()
	client := llm.NewAnthropicClientWithConfig(llm.AnthropicConfig{
		APIKey:  userCfg.APIKey,
		BaseURL: userCfg.BaseURL,
		Model:   userCfg.Model,
		Timeout: genCfg.HTTPClientTimeout,
	})

	p := pipeline.New(loader, client, genCfg)

	in := pipeline.Input{
		ModuleID:          moduleID,
		Submodule:         args[0],
		ExistingDocuments: docs,
	}
	in.Version, _ = cmd.Flags().GetString("doc-version")
	in.Owner, _ = cmd.Flags().GetString("owner")
	if company, _ := cmd.Flags().GetString("company"); company != "" {
		in.Answers = map[string]string{"company": company}
	}

	text, err := p.ImproveDocument(cmd.Context(), in)
	if err != nil {
		return err
	}

	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write document: %w", err)
		}
		log.Info("document written", zap.String("path", outPath))
	} else {
		fmt.Print(text)
	}

	if userCfg.RegistryPath != "" {
		if err := recordDocument(userCfg.RegistryPath, loader, in); err != nil {
			// Registry failures do not invalidate the generated document.
			log.Warn("failed to record document in registry", zap.Error(err))
		}
	}
	return nil
}

func recordDocument(registryPath string, loader *spec.Loader, in pipeline.Input) error {
	sub, err := loader.FindSubmoduleByName(in.ModuleID, in.Submodule, in.Submodule)
	if err != nil {
		return err
	}
	reg, err := store.Open(registryPath)
	if err != nil {
		return err
	}
	defer reg.Close()

	version := in.Version
	if version == "" {
		version = "1.0"
	}
	_, err = reg.Create(store.Document{
		Module:    in.ModuleID,
		Submodule: sub.Code,
		Title:     sub.Title,
		Version:   version,
	})
	return err
}

func loadEvidenceDocuments(dir string) ([]evidence.Document, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read docs directory: %w", err)
	}
	var docs []evidence.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		docs = append(docs, evidence.Document{FileName: entry.Name(), Text: string(data)})
	}
	return docs, nil
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "compliancegen.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&moduleID, "module", "primusgfs", "regulatory module id")

	outlineCmd.Flags().String("company", "", "company name for document control fields")

	generateCmd.Flags().String("docs", "", "directory of plain-text evidence documents")
	generateCmd.Flags().String("out", "", "write the document to a file instead of stdout")
	generateCmd.Flags().String("doc-version", "", "document version (default 1.0)")
	generateCmd.Flags().String("owner", "", "document owner")
	generateCmd.Flags().String("company", "", "company name for document control fields")

	rootCmd.AddCommand(outlineCmd, requirementsCmd, listCmd, generateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
