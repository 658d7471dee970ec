package apiversions

import "github.com/vocdoni/api-migrations/transforms"

// V20171226 renamed the category_id field of posts.
const V20171226 = "2017-12-26"

// RenameCategoryIDToCategory drops the _id suffix of the post category.
var RenameCategoryIDToCategory = transforms.RenameField(
	"RenameCategoryIDToCategory",
	postPattern,
	"The category_id property of posts is now category.",
	"category_id", "category",
)
