package s3source

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/Abraxas-365/kbloader/adapters/jsonloader"
	"github.com/Abraxas-365/kbloader/datasource"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// API is the subset of the S3 client used here; *s3.Client satisfies it.
type API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ObjectSource is a jsonloader.Source reading one S3 object.
type ObjectSource struct {
	client API
	bucket string
	key    string
}

func NewObjectSource(client API, bucket, key string) *ObjectSource {
	return &ObjectSource{client: client, bucket: bucket, key: key}
}

func (o *ObjectSource) Name() string {
	return "s3://" + o.bucket + "/" + o.key
}

func (o *ObjectSource) Open(ctx context.Context) (io.ReadCloser, error) {
	result, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	})
	if err != nil {
		code := datasource.ErrCodeFileAccess
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			code = datasource.ErrCodeNotFound
		}
		return nil, &datasource.DataSourceError{
			Source:  o.Name(),
			Op:      "Open",
			Err:     err,
			Code:    code,
			Message: "failed to get object",
		}
	}
	return result.Body, nil
}

// S3Source loads every JSON object under a prefix. Keys ending in .json are
// read as one JSON document, keys ending in .jsonl or .ndjson as JSON Lines;
// other keys are skipped. Sequence numbers restart for each object.
type S3Source struct {
	client API
	bucket string
	prefix string
	query  string
	opts   []jsonloader.Option
}

func NewS3Source(client API, bucket, prefix, query string, opts ...jsonloader.Option) *S3Source {
	return &S3Source{
		client: client,
		bucket: bucket,
		prefix: prefix,
		query:  query,
		opts:   opts,
	}
}

func (s *S3Source) Load(ctx context.Context, opts ...datasource.Option) ([]datasource.Document, error) {
	options := datasource.NewLoadOptions(opts...)

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	}

	var documents []datasource.Document
	paginator := s3.NewListObjectsV2Paginator(s.client, input)

	for paginator.HasMorePages() && !options.Full(len(documents)) {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &datasource.DataSourceError{
				Source:  "s3://" + s.bucket + "/" + s.prefix,
				Op:      "Load",
				Err:     err,
				Code:    datasource.ErrCodeInternal,
				Message: "failed to list objects",
			}
		}

		for _, obj := range page.Contents {
			if options.Full(len(documents)) {
				break
			}

			key := aws.ToString(obj.Key)
			jsonLines, ok := framing(key)
			if !ok || (!options.Recursive && !s.direct(key)) {
				continue
			}

			loaderOpts := append(append([]jsonloader.Option{}, s.opts...), jsonloader.WithJSONLines(jsonLines))
			loader, err := jsonloader.New(NewObjectSource(s.client, s.bucket, key), s.query, loaderOpts...)
			if err != nil {
				return nil, err
			}

			objOpts := opts
			if options.MaxItems > 0 {
				objOpts = append(append([]datasource.Option{}, opts...), datasource.WithMaxItems(options.MaxItems-len(documents)))
			}

			docs, err := loader.Load(ctx, objOpts...)
			if err != nil {
				return nil, err
			}
			documents = append(documents, docs...)
		}
	}

	return documents, nil
}

// direct reports whether key sits directly in the directory holding the
// prefix. A prefix without a trailing slash, like "docs/a", matches keys
// such as "docs/a1.json" but not "docs/ab/c.json".
func (s *S3Source) direct(key string) bool {
	dir := s.prefix[:strings.LastIndex(s.prefix, "/")+1]
	return !strings.Contains(strings.TrimPrefix(key, dir), "/")
}

func framing(key string) (jsonLines bool, ok bool) {
	switch strings.ToLower(path.Ext(key)) {
	case ".json":
		return false, true
	case ".jsonl", ".ndjson":
		return true, true
	default:
		return false, false
	}
}
