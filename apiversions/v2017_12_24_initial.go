package apiversions

// V20171224 is the first version of the API. It carries no migrations, since
// no client can be behind it.
const V20171224 = "2017-12-24"
