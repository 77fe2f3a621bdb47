package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/chainchart"
	"github.com/meikuraledutech/chainchart/backend"
	"github.com/meikuraledutech/chainchart/internal/ui"
)

func (a *app) compileCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a diagram into a contract",
		Long: "Send a diagram to the contract backend. With --out the contract source,\n" +
			"NEF and manifest are written next to each other in that directory.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDiagram(cmd, args[0])
			if err != nil {
				return err
			}
			art, err := a.backend().Compile(cmd.Context(), *d)
			if err != nil {
				printCompileErrors(cmd.ErrOrStderr(), err)
				return err
			}

			out := cmd.OutOrStdout()
			for _, msg := range art.CompileErrors {
				fmt.Fprintf(out, "  %s %s\n", ui.WarnIcon(), msg)
			}
			if outDir == "" {
				fmt.Fprintln(out, art.Contract)
				return nil
			}

			base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			if base == "" || base == "-" {
				base = "contract"
			}
			written, err := writeArtifact(outDir, base, art)
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Fprintf(out, "  %s %s\n", ui.StatusIcon(true), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory to write the contract, NEF and manifest to")
	return cmd
}

// writeArtifact writes <base>.py, <base>.nef and <base>.manifest.json into
// dir, skipping parts the backend did not return.
func writeArtifact(dir, base string, art *chainchart.Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var manifest []byte
	if len(art.Manifest) > 0 && string(art.Manifest) != "null" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, art.Manifest, "", "  "); err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
		buf.WriteByte('\n')
		manifest = buf.Bytes()
	}

	files := []struct {
		name string
		data []byte
	}{
		{base + ".py", []byte(art.Contract)},
		{base + ".nef", []byte(art.NEF)},
		{base + ".manifest.json", manifest},
	}

	var written []string
	for _, f := range files {
		if len(f.data) == 0 {
			continue
		}
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func printCompileErrors(w io.Writer, err error) {
	var berr *backend.Error
	if !errors.As(err, &berr) {
		return
	}
	for _, msg := range berr.CompileErrors {
		fmt.Fprintf(w, "  %s %s\n", ui.Bad.Sprint("│"), msg)
	}
}

func (a *app) deployCmd() *cobra.Command {
	var (
		nefPath      string
		manifestPath string
		req          chainchart.DeployRequest
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a compiled contract",
		Long: "Deploy either a contract the backend already stored (--contract-id) or a\n" +
			"NEF and manifest pair produced by `chainchart compile --out`.\n" +
			"The private key defaults to $CHAINCHART_PRIVATE_KEY.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.ContractID == "" {
				if nefPath == "" || manifestPath == "" {
					return errors.New("either --contract-id or both --nef and --manifest are required")
				}
				nef, err := os.ReadFile(nefPath)
				if err != nil {
					return err
				}
				manifest, err := os.ReadFile(manifestPath)
				if err != nil {
					return err
				}
				if !json.Valid(manifest) {
					return fmt.Errorf("%s: manifest is not valid JSON", manifestPath)
				}
				req.NEF = strings.TrimSpace(string(nef))
				req.Manifest = manifest
			}
			if req.PrivateKey == "" {
				req.PrivateKey = os.Getenv("CHAINCHART_PRIVATE_KEY")
			}
			key, err := backend.ValidatePrivateKey(req.PrivateKey)
			if err != nil {
				return err
			}
			req.PrivateKey = key

			dep, err := a.backend().Deploy(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  %s deployed\n", ui.StatusIcon(true))
			fmt.Fprintf(out, "  %s %s\n", ui.Subtle.Sprint("tx       "), dep.TxHash)
			if dep.ContractHash != "" {
				fmt.Fprintf(out, "  %s %s\n", ui.Subtle.Sprint("contract "), dep.ContractHash)
			}
			if dep.Mock {
				fmt.Fprintf(out, "  %s mock deployment, nothing was sent to the network\n", ui.WarnIcon())
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&nefPath, "nef", "", "NEF file")
	f.StringVar(&manifestPath, "manifest", "", "manifest JSON file")
	f.StringVar(&req.ContractID, "contract-id", "", "id of a contract stored by the backend")
	f.StringVar(&req.UserID, "user-id", "", "owner of --contract-id")
	f.StringVar(&req.PrivateKey, "private-key", "", "WIF private key")
	f.StringVar(&req.RPCURL, "rpc-url", "", "RPC endpoint")
	f.StringVar(&req.Network, "network", "", "network name, such as testnet")
	return cmd
}

func (a *app) executeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "execute <file>",
		Short: "Run a diagram against the backend and show the final memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDiagram(cmd, args[0])
			if err != nil {
				return err
			}
			res, err := a.backend().Execute(cmd.Context(), *d)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			keys := make([]string, 0, len(res.FinalMemory))
			for k := range res.FinalMemory {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				v, err := json.Marshal(res.FinalMemory[k])
				if err != nil {
					return err
				}
				rows = append(rows, []string{k, string(v)})
			}

			fmt.Fprintf(out, "  %s %d log entries\n\n", ui.StatusIcon(true), len(res.Logs))
			if len(rows) == 0 {
				fmt.Fprintln(out, ui.Subtle.Sprint("  final memory is empty"))
				return nil
			}
			ui.Table(out, []string{"KEY", "VALUE"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full execution result as JSON")
	return cmd
}
