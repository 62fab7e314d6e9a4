package appfs

import "embed"

// FS embeds all static application files: DB migrations and email templates.
// The _base.* layouts are named explicitly: directory patterns skip files
// with a leading underscore.
//go:embed migrations templates templates/email/_base.txt templates/email/_base.gohtml
var FS embed.FS
