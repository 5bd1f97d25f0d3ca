/*
Package config loads rule sets for patchrc and compiles them into rules.

	            +-------------+
	            |   RuleSet   |
	            | files/rules |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+-----+ +----+----+ +-----+-----+
	|   YAML    | |  JSON   | |    HCL    |
	|  Parser   | | Parser  | |  Parser   |
	+-----------+ +---------+ +-----------+

🎯 Purpose:
- Reads rule set files in YAML, JSON or HCL
- Validates rule descriptors before any target file is touched
- Compiles descriptors into pkg/rule values, keeping their order
- Expands the target file globs

🔄 Flow:
1. Reads the rule set file
2. Picks a parser by extension (.patchrc tries YAML, then HCL)
3. Validates names, rule kinds and file patterns
4. Compile builds the ordered []rule.Rule a pipeline runs

📝 Rule kinds:
- collapse: dedupe runs of a repeated fragment
- literal: exact substring replacement
- scan: line scanner with header, block, field and join actions

Rule order is significant. A scan that injects a field should come before
the collapse that dedupes it, so that re-running the set is a no-op.

🔍 Example:

	files:
	  - "server/*.ts"
	rules:
	  - name: dedupe-owner
	    collapse:
	      fragment: "ownerName: users.username,"
	      replacement: "ownerName: users.username,\n        "
	  - name: list-response
	    literal:
	      old: "res.json({\n        ...lead,\n        ownerName,"
	      new: "res.json({"

	cfg, err := config.LoadConfig(ctx, ".patchrc.yaml")
	if err != nil {
		return err
	}
	rules, err := cfg.Compile()
*/
package config
