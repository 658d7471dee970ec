package apiversions

import "github.com/vocdoni/api-migrations/transforms"

// V20171225 renamed the author_id field of posts.
const V20171225 = "2017-12-25"

// DropAuthorID drops the _id suffix of the post author.
var DropAuthorID = transforms.RenameField(
	"DropAuthorID",
	postPattern,
	"The _id suffix has been removed from the author property of posts.",
	"author_id", "author",
)
