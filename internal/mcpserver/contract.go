package mcpserver

// VaultLayoutContract describes the canonical vault layout and document
// frontmatter schemas that LLM consumers should follow.
const VaultLayoutContract = `# Mazkir Vault Layout Contract

The vault is a directory of plain Markdown documents with YAML frontmatter.
Humans edit these files directly, so tools MUST preserve field order and
body text exactly when rewriting a document.

## Directories

| Path | Contents |
|---|---|
| ` + "`" + `20-habits/` + "`" + ` | One document per habit |
| ` + "`" + `30-goals/` + "`" + ` | One document per goal |
| ` + "`" + `10-daily/` + "`" + ` | One day note per calendar date (` + "`" + `YYYY-MM-DD.md` + "`" + `) |
| ` + "`" + `40-tasks/active/` + "`" + ` | Active tasks |
| ` + "`" + `40-tasks/archive/` + "`" + ` | Archived tasks |
| ` + "`" + `00-system/motivation-tokens.md` + "`" + ` | The single token ledger |

## Habit document

` + "```" + `markdown
---
name: Morning Gym
status: active
frequency: daily
category: health
streak: 12
best_streak: 21
last_completed: 2026-08-28
tokens_per_completion: 10
---

Optional free-form notes.
` + "```" + `

` + "`" + `status` + "`" + ` is ` + "`" + `active` + "`" + ` or ` + "`" + `archived` + "`" + `. Dates are plain
` + "`" + `YYYY-MM-DD` + "`" + ` strings. Streak counters never go negative.

## Task document

` + "```" + `markdown
---
name: Renew passport
status: active
priority: 4
due_date: 2026-09-15
tokens_on_completion: 15
---
` + "```" + `

` + "`" + `priority` + "`" + ` runs 1 (low) to 5 (urgent). ` + "`" + `due_date` + "`" + ` is optional.

## Goal document

` + "```" + `markdown
---
name: Learn Spanish
status: in-progress
priority: high
progress: 40
target_date: 2026-12-31
category: personal
milestones:
  - name: Finish A1 course
    status: completed
  - name: Hold a 10-minute conversation
    status: pending
---
` + "```" + `

` + "`" + `status` + "`" + ` is one of ` + "`" + `not-started` + "`" + `, ` + "`" + `planning` + "`" + `,
` + "`" + `active` + "`" + `, ` + "`" + `in-progress` + "`" + `, ` + "`" + `completed` + "`" + `.
` + "`" + `priority` + "`" + ` is ` + "`" + `high` + "`" + `, ` + "`" + `medium` + "`" + `, or ` + "`" + `low` + "`" + `.
` + "`" + `progress` + "`" + ` is a percentage, 0 to 100. A milestone counts as done when
its ` + "`" + `status` + "`" + ` is ` + "`" + `completed` + "`" + `.

## Day note

` + "```" + `markdown
---
date: 2026-08-29
tokens_earned: 20
tokens_total: 255
completed_habits:
  - Morning Gym
  - Reading
updated: 2026-08-29
---

# 2026-08-29

Free-form journal text below the frontmatter is never touched by tools.
` + "```" + `

## Ledger

` + "```" + `markdown
---
total_tokens: 255
tokens_today: 20
all_time_tokens: 1255
updated: 2026-08-29
---
` + "```" + `

` + "`" + `total_tokens` + "`" + ` is the spendable balance, ` + "`" + `all_time_tokens` + "`" + ` only
ever grows, ` + "`" + `tokens_today` + "`" + ` resets when ` + "`" + `updated` + "`" + ` rolls to a new date.

## Rules

1. Frontmatter fences ` + "`" + `---` + "`" + ` start at the first byte of the file.
2. Unknown frontmatter fields MUST be preserved, in place, on rewrite.
3. File and directory names are lowercase kebab-case English; field values
   may use any language.
4. Encoding is UTF-8 with a trailing newline.
5. Do not edit ` + "`" + `00-system/pending-credits.json` + "`" + `; it is the crash
   journal for in-flight completions.
`
