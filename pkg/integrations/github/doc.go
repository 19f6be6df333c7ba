// Package github implements the [forge.Backend] capability set on top of the
// GitHub REST API (https://api.github.com).
//
// # Usage
//
//	client := github.NewClient(backend, token, 30*time.Minute)
//	tags, err := client.ListTags(ctx, "curl/curl")
//	commits, err := client.CommitsBetween(ctx, "curl/curl", "curl-8_14_0", "curl-8_14_1")
//
// # Endpoints
//
//   - ListTags: GET /repos/{owner}/{repo}/tags, paginated with per_page/page
//   - CommitsBetween: GET /repos/{owner}/{repo}/compare/{from}...{to}
//   - FetchFile: GET /repos/{owner}/{repo}/contents/{path}?ref={ref}
//
// # Authentication
//
// A token is optional. Without one the API allows 60 requests per hour;
// rate-limit responses are recognized from the X-RateLimit-* headers and
// waited out by the shared retry policy.
//
// [forge.Backend]: github.com/matzehuels/archlog/pkg/forge.Backend
package github
