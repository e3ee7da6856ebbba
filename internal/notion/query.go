package notion

import (
	"context"

	"github.com/jomei/notionapi"
)

// QueryAll runs a database query and follows pagination until every page
// has been collected. A nil filter fetches the whole database.
func QueryAll(ctx context.Context, client *notionapi.Client, id notionapi.DatabaseID, filter notionapi.Filter) ([]notionapi.Page, error) {
	var pages []notionapi.Page
	req := &notionapi.DatabaseQueryRequest{Filter: filter}
	for {
		resp, err := client.Database.Query(ctx, id, req)
		if err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore {
			return pages, nil
		}
		req.StartCursor = resp.NextCursor
	}
}
