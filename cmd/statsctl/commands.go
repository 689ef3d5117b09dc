package main

import (
	"fmt"
	"io"

	"github.com/SlpAus/portfolio-backend/internal/widget"
	"github.com/spf13/cobra"
)

func printState(w io.Writer, s widget.State) {
	heart := "♡"
	if s.Loved {
		heart = "♥"
	}
	fmt.Fprintf(w, "浏览: %d\n", s.Views)
	fmt.Fprintf(w, "喜欢: %d %s\n", s.Loves, heart)
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "显示当前计数，不做任何修改",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.widget()
			if err != nil {
				return err
			}
			if err := w.Refresh(cmd.Context()); err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), w.Snapshot())
			return nil
		},
	}
}

func newVisitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "visit",
		Short: "模拟一次页面加载：读取计数并把浏览数 +1",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.widget()
			if err != nil {
				return err
			}
			if err := w.Mount(cmd.Context()); err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), w.Snapshot())
			return nil
		},
	}
}

func newLoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "love",
		Short: "点一次喜欢；本机已经点过时什么也不做",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.widget()
			if err != nil {
				return err
			}
			if err := w.Refresh(cmd.Context()); err != nil {
				return err
			}
			sent, err := w.Love(cmd.Context())
			if !sent && err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "已经喜欢过了。")
			}
			printState(cmd.OutOrStdout(), w.Snapshot())
			return err
		},
	}
}

func newInitCmd(opts *options) *cobra.Command {
	var views, loves int64
	cmd := &cobra.Command{
		Use:   "init",
		Short: "把计数设置为指定值（默认都为0）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if views < 0 || loves < 0 {
				return fmt.Errorf("计数不能为负数")
			}
			s, err := opts.client().Initialize(cmd.Context(), views, loves)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已初始化: 浏览 %d, 喜欢 %d\n", s.SiteViews, s.LoveCount)
			return nil
		},
	}
	cmd.Flags().Int64Var(&views, "views", 0, "浏览数")
	cmd.Flags().Int64Var(&loves, "loves", 0, "喜欢数")
	return cmd
}
