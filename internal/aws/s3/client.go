package s3

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// ListingTimeZone is the fixed zone listing timestamps are reported in.
const ListingTimeZone = "America/Mexico_City"

type S3API interface {
	ListObjectsV2(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
}

type Client struct {
	api S3API
	log logrus.FieldLogger
	loc *time.Location
}

func NewClient(api S3API, log logrus.FieldLogger) *Client {
	loc, err := time.LoadLocation(ListingTimeZone)
	if err != nil {
		// tzdata is compiled in via the entry point; this path only
		// triggers on a stripped build, where UTC keeps timestamps
		// zone-aware.
		log.WithError(err).Warnf("loading %s failed, keeping UTC", ListingTimeZone)
		loc = time.UTC
	}
	return &Client{api: api, log: log, loc: loc}
}

// ListObjects enumerates bucket in a single call and maps every entry
// to an ObjectRecord with its timestamp converted to the listing zone.
// An empty bucket yields an empty Listing, not an error.
//
// The prefix is logged but not applied to the request: the full bucket
// is listed, matching how the ingestion pipeline behaves today.
// TODO: set Prefix on the request once the pipeline owner confirms
// folder scoping is intended rather than informational.
func (c *Client) ListObjects(ctx context.Context, bucket, prefix string) (Listing, error) {
	c.log.WithFields(logrus.Fields{
		"bucket": bucket,
		"prefix": prefix,
	}).Info("listing objects")

	out, err := c.api.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return Listing{}, fmt.Errorf("ListObjectsV2: %w", err)
	}

	if len(out.Contents) == 0 {
		c.log.Info("no files found in the source folder")
		return Listing{}, nil
	}
	c.log.WithField("objects", len(out.Contents)).Info("objects found in source folder")

	records := make([]ObjectRecord, 0, len(out.Contents))
	for _, obj := range out.Contents {
		var lastModified time.Time
		if obj.LastModified != nil {
			lastModified = obj.LastModified.In(c.loc)
		}
		records = append(records, ObjectRecord{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: lastModified,
			StorageClass: string(obj.StorageClass),
		})
	}

	c.log.WithFields(logrus.Fields{
		"records": len(records),
		"fields":  reflect.TypeOf(ObjectRecord{}).NumField(),
	}).Info("listing built")

	return Listing{Records: records}, nil
}
