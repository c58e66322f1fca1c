// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/normalee1993/BallotResearch/internal/meta"
)

const bashCompletionScript = `# bash completion for civicctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_civicctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "ballot candidate compare cache completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --tldr --schema --no-spinner --store --no-persist"

    case "$cmd" in
        ballot)
            local opts="$common --refresh -r"
            ;;
        candidate|compare)
            local opts="$common"
            ;;
        cache)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "clear purge" -- "$cur") )
                return 0
            fi
            local opts="--namespace -n --hours --store --tldr"
            if [[ "$prev" == "--namespace" || "$prev" == "-n" ]]; then
                COMPREPLY=( $(compgen -W "ballots candidate-profiles" -- "$cur") )
                return 0
            fi
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

    if [[ "$prev" == "--store" ]]; then
        COMPREPLY=( $(compgen -W "file sqlite s3 memory" -- "$cur") )
        return 0
    fi

    # Locations and candidate ids are free text, so only flags are offered.
    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    fi
    return 0
}

complete -F _civicctl civicctl
`

const zshCompletionScript = `#compdef civicctl

_civicctl() {
  local -a cmds
  cmds=(
    'ballot:research the ballot for a location'
    'candidate:research one candidate on a ballot'
    'compare:compare two candidates in the same race'
    'cache:manage the research cache'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[row keys to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort keys]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--schema[dump row keys]'
  '--no-spinner[do not show progress]'
  '--store[cache backend]:backend:(file sqlite s3 memory)'
  '--no-persist[keep research in memory only]'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'civicctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    ballot)
      _arguments -C \
        $common \
        '(-r --refresh)'{-r,--refresh}'[research again]' \
        '*:location:'
      ;;
    candidate)
      _arguments -C \
        $common \
        '1:location:' \
        '2:candidate id:'
      ;;
    compare)
      _arguments -C \
        $common \
        '1:location:' \
        '2:candidate id:' \
        '3:candidate id:'
      ;;
    cache)
      _arguments -C \
        '1: :((clear purge))' \
        '(-n --namespace)'{-n,--namespace}'[namespace]:namespace:(ballots candidate-profiles)' \
        '--hours[minimum age in hours]:hours' \
        '--store[cache backend]:backend:(file sqlite s3 memory)'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _civicctl civicctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(m.Stdout(), bashCompletionScript)
	case "zsh":
		fmt.Fprint(m.Stdout(), zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(m.Stdout(), zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(m.Stdout(), bashCompletionScript)
		} else {
			fmt.Fprintln(m.Stderr(), "usage: civicctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "civicctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
