package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/International-Combat-Archery-Alliance/registration-client/ptr"
)

func runProfiles(ctx context.Context, a *app, args []string) error {
	fs := a.flags("profiles")
	limit := fs.Int("limit", 20, "profiles per page")
	cursor := fs.String("cursor", "", "page cursor from a previous listing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if a.profiles == nil {
		return errors.New("profiles are only kept with REGCTL_CREDENTIAL_BACKEND=dynamo")
	}

	var c *string
	if *cursor != "" {
		c = ptr.String(*cursor)
	}
	resp, err := a.profiles.ListProfiles(ctx, int32(*limit), c)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tSAVED\tACTIVE")
	for _, p := range resp.Data {
		active := ""
		if p.Name == a.cfg.Profile {
			active = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.SavedAt.Format(time.RFC3339), active)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if resp.HasNextPage && resp.Cursor != nil {
		fmt.Fprintf(a.out, "More profiles: regctl profiles -cursor %s\n", *resp.Cursor)
	}
	return nil
}
