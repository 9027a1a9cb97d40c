package main

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"goout/internal/client"
	"goout/internal/model"
	"goout/internal/schema"
	"goout/internal/wizard"
)

func (cf *clientFlags) client() *client.Client {
	var opts []client.Option
	if cf.token != "" {
		opts = append(opts, client.WithToken(cf.token))
	}
	return client.New(cf.apiURL, opts...)
}

// lookupKind accepts a kind name ("hotel") or its path ("hotels").
func lookupKind(name string) (*schema.Kind, error) {
	reg := schema.MustDefault()
	if k, err := reg.Lookup(name); err == nil {
		return k, nil
	}
	for _, k := range reg.Kinds {
		if k.Path == name {
			return k, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", schema.ErrUnknownKind, name)
}

// parsePairs splits repeated key=value flags.
func parsePairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		out[k] = v
	}
	return out, nil
}

func newKindsCommand(cf *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the listing kinds the server offers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rs, err := cf.client().Schema(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tPATH\tFILTERS\tMAX IMAGES")
			for i := range rs.Kinds {
				k := &rs.Kinds[i]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", k.Name, k.Path, strings.Join(client.FilterParams(k), ","), k.MaxImages)
			}
			return tw.Flush()
		},
	}
}

func newBrowseCommand(cf *clientFlags) *cobra.Command {
	var (
		search  string
		filters []string
		owner   string
		page    int
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "browse <kind>",
		Short: "List a page of listings with optional search and filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := lookupKind(args[0])
			if err != nil {
				return err
			}
			c := cf.client()

			if owner != "" {
				p, err := c.ListByOwner(cmd.Context(), kind, owner, page, limit)
				if err != nil {
					return err
				}
				printPage(cmd.OutOrStdout(), kind, p.Items, p.Pagination)
				return nil
			}

			vals, err := parsePairs(filters)
			if err != nil {
				return err
			}
			state := client.NewFilterState().WithSearch(search).WithLimit(limit)
			params := client.FilterParams(kind)
			for k, v := range vals {
				if !slices.Contains(params, k) {
					return fmt.Errorf("%w %q for %s (accepted: %s)", client.ErrUnknownFilter, k, kind.Name, strings.Join(params, ", "))
				}
				state = state.With(k, v)
			}

			b := client.NewBrowser(c, kind, c.BaseURL())
			if err := b.Apply(cmd.Context(), state.WithPage(page)); err != nil {
				return err
			}
			printPage(cmd.OutOrStdout(), kind, b.Items(), b.Pagination())
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive text search")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as param=value, repeatable")
	cmd.Flags().StringVar(&owner, "owner", "", "list only this owner's listings")
	cmd.Flags().IntVar(&page, "page", 1, "1-based page")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size, 0 for the server default")
	return cmd
}

func printPage(w io.Writer, kind *schema.Kind, items []model.Resource, p model.Pagination) {
	if len(items) == 0 {
		fmt.Fprintf(w, "No %s found.\n", kind.Collection)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "ID")
	for _, f := range kind.SummaryFields {
		fmt.Fprint(tw, "\t"+strings.ToUpper(f))
	}
	fmt.Fprintln(tw, "\tIMAGES")
	for i := range items {
		r := &items[i]
		fmt.Fprint(tw, r.ID)
		for _, f := range kind.SummaryFields {
			fmt.Fprint(tw, "\t"+cell(r.Attributes[f]))
		}
		fmt.Fprintf(tw, "\t%d\n", len(r.Images))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "page %d of %d, %d matching\n", p.CurrentPage, p.TotalPages, p.TotalMatching)
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

func newShowCommand(cf *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <kind> <id>",
		Short: "Show one listing with its image URLs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := lookupKind(args[0])
			if err != nil {
				return err
			}
			c := cf.client()
			rec, err := c.Get(cmd.Context(), kind, args[1])
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("%s %s not found", kind.Label, args[1])
			}
			if err != nil {
				return err
			}

			d := client.NewDetailView(kind, *rec, c.BaseURL())
			w := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\t%s\n", rec.ID)
			fmt.Fprintf(tw, "Owner\t%s\n", rec.OwnerID)
			for _, a := range d.Attributes() {
				fmt.Fprintf(tw, "%s\t%s\n", a.Label, a.Value)
			}
			fmt.Fprintf(tw, "Created\t%s\n", rec.CreatedAt.Format("2006-01-02 15:04"))
			_ = tw.Flush()

			urls := d.ImageURLs()
			if len(urls) == 0 {
				fmt.Fprintln(w, "Images: none")
				return nil
			}
			fmt.Fprintf(w, "Images (%d):\n", len(urls))
			for i, u := range urls {
				fmt.Fprintf(w, "  %d. %s\n", i+1, u)
			}
			return nil
		},
	}
}

func newCreateCommand(cf *clientFlags) *cobra.Command {
	var (
		sets   []string
		images []string
		owner  string
	)
	cmd := &cobra.Command{
		Use:   "create <kind>",
		Short: "Create a listing by walking the kind's form steps",
		Long: "Values are given with --set name=value. List and object fields take JSON, " +
			`for example --set 'languages=["English","Sinhala"]'. Images are local file paths.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := lookupKind(args[0])
			if err != nil {
				return err
			}
			vals, err := parsePairs(sets)
			if err != nil {
				return err
			}

			draft, err := fillWizard(kind, vals, images)
			if err != nil {
				return err
			}

			created, err := cf.client().Create(cmd.Context(), kind, owner, draft)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.Message)
			if id, ok := created.Summary["id"]; ok {
				fmt.Fprintf(cmd.OutOrStdout(), "id: %v\n", id)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as name=value, repeatable")
	cmd.Flags().StringArrayVar(&images, "image", nil, "image file to upload, repeatable")
	cmd.Flags().StringVar(&owner, "owner", "", "owner ID; defaults to the token subject")
	return cmd
}

// fillWizard runs the form steps in order so a missing value is reported
// against the step that asks for it.
func fillWizard(kind *schema.Kind, vals map[string]string, images []string) (*wizard.Draft, error) {
	wz := wizard.New(kind)
	for k, v := range vals {
		if err := wz.Set(k, v); err != nil {
			return nil, err
		}
	}
	for _, path := range images {
		img, err := readImage(path)
		if err != nil {
			return nil, err
		}
		if err := wz.AddImage(img); err != nil {
			return nil, err
		}
	}
	for wz.Step() < wz.Steps() {
		if err := wz.Next(); err != nil {
			return nil, describeStepError(kind, err)
		}
	}
	draft, err := wz.Submit()
	if err != nil {
		return nil, describeStepError(kind, err)
	}
	return draft, nil
}

func describeStepError(kind *schema.Kind, err error) error {
	var se *wizard.StepError
	if !errors.As(err, &se) {
		return err
	}
	title := kind.Steps[se.Step-1].Title
	return fmt.Errorf("step %d (%s): %w", se.Step, title, se.Fields)
}

func readImage(path string) (wizard.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return wizard.Image{}, fmt.Errorf("read image: %w", err)
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return wizard.Image{Filename: filepath.Base(path), ContentType: ct, Data: data}, nil
}

func newDeleteCommand(cf *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete a listing and its images",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := lookupKind(args[0])
			if err != nil {
				return err
			}
			msg, err := cf.client().Delete(cmd.Context(), kind, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
