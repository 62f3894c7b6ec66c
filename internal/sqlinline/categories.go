package sqlinline

const QListCategoriesWithCounts = `--sql 29f3476d-a31b-4c00-bbcd-d2bd61e999e1
select
  c.id,
  c.name,
  coalesce(c.description, ''),
  coalesce(c.details, ''),
  count(t.id)::int,
  c.created_at,
  c.updated_at
from categories c
left join templates t on t.category_id = c.id
group by c.id
order by c.name asc;
`

const QSelectCategoryByID = `--sql 44226601-bc93-4d0c-a69b-c8b54f6b23fd
select
  c.id,
  c.name,
  coalesce(c.description, ''),
  coalesce(c.details, ''),
  (select count(*) from templates t where t.category_id = c.id)::int,
  c.created_at,
  c.updated_at
from categories c
where c.id = $1::bigint
limit 1;
`

const QFirstOrCreateCategory = `--sql 3d85e4c2-6482-46d8-951e-d10023d8127e
with inserted as (
  insert into categories(name, description, details, created_at, updated_at)
  values ($1::text, nullif($2::text, ''), nullif($3::text, ''), now(), now())
  on conflict (name) do nothing
  returning id, name, coalesce(description, '') as description, coalesce(details, '') as details, created_at, updated_at
)
select id, name, description, details, created_at, updated_at from inserted
union all
select id, name, coalesce(description, ''), coalesce(details, ''), created_at, updated_at
from categories
where name = $1::text
limit 1;
`

const QUpdateCategoryDetails = `--sql 684482f4-11f8-480d-91ef-b57538d95da1
update categories
set details = nullif($2::text, ''),
    updated_at = now()
where id = $1::bigint;
`
